// Package streamgen generates proxy implementations for stream channels.
//
// Go cannot implement an interface at run time, so every channel needs a
// small struct embedding *stream.Proxy whose methods forward to
// Proxy.Invoke. Parse finds the channels declared in a source file and
// Render emits those structs plus the init that registers them.
package streamgen

import (
	"bytes"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// StreamImportPath is the import path of the stream package.
const StreamImportPath = "github.com/neoclaw-ai/stream/internal/stream"

var (
	ErrNoStreamImport = errors.New("streamgen: file does not import " + StreamImportPath)
	ErrNoChannels     = errors.New("streamgen: no channel interfaces found")
)

// File is a parsed source file.
type File struct {
	Filename string
	Package  string
	// StreamName is the local name of the stream package in the file.
	StreamName string
	Imports    []Import
	Channels   []Channel
}

type Import struct {
	Name string
	Path string
}

// Channel is an interface embedding stream.Stream, directly or through
// another channel of the same file.
type Channel struct {
	Name    string
	Methods []Method
}

type Method struct {
	Name     string
	Params   []Param
	Results  []string
	Variadic bool
}

// Param is one method parameter. For a variadic method the last Type
// carries the "..." prefix.
type Param struct {
	Name string
	Type string
}

type iface struct {
	spec  *ast.TypeSpec
	typ   *ast.InterfaceType
	embed bool
}

// Parse parses src and collects its channel interfaces in declaration order.
func Parse(filename string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	af, err := parser.ParseFile(fset, filename, src, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("streamgen: parse %s: %w", filename, err)
	}

	f := &File{Filename: filename, Package: af.Name.Name}
	for _, spec := range af.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("streamgen: bad import %s: %w", spec.Path.Value, err)
		}
		imp := Import{Path: path}
		if spec.Name != nil {
			imp.Name = spec.Name.Name
		}
		f.Imports = append(f.Imports, imp)
		if path == StreamImportPath {
			f.StreamName = "stream"
			if imp.Name != "" {
				f.StreamName = imp.Name
			}
		}
	}
	if f.StreamName == "" || f.StreamName == "_" || f.StreamName == "." {
		return nil, ErrNoStreamImport
	}

	var order []string
	ifaces := make(map[string]*iface)
	taken := importNames(f)
	for _, decl := range af.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, s := range gd.Specs {
			ts := s.(*ast.TypeSpec)
			taken[ts.Name.Name] = true
			it, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			ifaces[ts.Name.Name] = &iface{spec: ts, typ: it}
			order = append(order, ts.Name.Name)
		}
	}

	p := &fileParser{fset: fset, file: f, ifaces: ifaces, channel: make(map[string]bool), taken: taken}
	for _, name := range order {
		if !p.isChannel(name, nil) {
			continue
		}
		ch, err := p.channelOf(name)
		if err != nil {
			return nil, err
		}
		f.Channels = append(f.Channels, ch)
	}
	if len(f.Channels) == 0 {
		return nil, ErrNoChannels
	}
	return f, nil
}

type fileParser struct {
	fset    *token.FileSet
	file    *File
	ifaces  map[string]*iface
	channel map[string]bool
	// taken holds package and type names a parameter must not shadow.
	taken map[string]bool
}

// importNames returns the names the file's imports may be referred to by.
// Without an alias the package name is guessed from the path, so both the
// last element and the one before a major version suffix count.
func importNames(f *File) map[string]bool {
	names := map[string]bool{f.StreamName: true}
	for _, imp := range f.Imports {
		switch imp.Name {
		case "_", ".":
			continue
		case "":
		default:
			names[imp.Name] = true
			continue
		}
		elem := path.Base(imp.Path)
		if majorVersion.MatchString(elem) {
			names[path.Base(path.Dir(imp.Path))] = true
		}
		names[elem] = true
		if i := strings.Index(elem, ".v"); i > 0 {
			names[elem[:i]] = true
		}
		if rest, ok := strings.CutPrefix(elem, "go-"); ok {
			names[rest] = true
		}
	}
	return names
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// isChannel reports whether the named local interface embeds stream.Stream.
func (p *fileParser) isChannel(name string, seen map[string]bool) bool {
	if v, ok := p.channel[name]; ok {
		return v
	}
	it, ok := p.ifaces[name]
	if !ok || seen[name] {
		return false
	}
	if seen == nil {
		seen = make(map[string]bool)
	}
	seen[name] = true

	found := false
	for _, field := range it.typ.Methods.List {
		if len(field.Names) > 0 {
			continue
		}
		switch t := field.Type.(type) {
		case *ast.SelectorExpr:
			if p.isStream(t) {
				found = true
			}
		case *ast.Ident:
			if p.isChannel(t.Name, seen) {
				found = true
			}
		}
	}
	p.channel[name] = found
	return found
}

func (p *fileParser) isStream(sel *ast.SelectorExpr) bool {
	x, ok := sel.X.(*ast.Ident)
	return ok && x.Name == p.file.StreamName && sel.Sel.Name == "Stream"
}

func (p *fileParser) channelOf(name string) (Channel, error) {
	it := p.ifaces[name]
	if it.spec.TypeParams != nil && len(it.spec.TypeParams.List) > 0 {
		return Channel{}, fmt.Errorf("streamgen: channel %s: type parameters are not supported", name)
	}

	ch := Channel{Name: name}
	seen := make(map[string]bool)
	if err := p.collect(name, &ch, seen, map[string]bool{}); err != nil {
		return Channel{}, fmt.Errorf("streamgen: channel %s: %w", name, err)
	}
	if len(ch.Methods) == 0 {
		return Channel{}, fmt.Errorf("streamgen: channel %s declares no methods", name)
	}
	return ch, nil
}

// collect appends the methods of the named interface and of the local
// interfaces it embeds.
func (p *fileParser) collect(name string, ch *Channel, seen, visiting map[string]bool) error {
	if visiting[name] {
		return fmt.Errorf("interface %s embeds itself", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	for _, field := range p.ifaces[name].typ.Methods.List {
		if len(field.Names) == 0 {
			switch t := field.Type.(type) {
			case *ast.SelectorExpr:
				if p.isStream(t) {
					continue
				}
				return fmt.Errorf("embedded interface %s from another package is not supported", p.expr(t))
			case *ast.Ident:
				if _, ok := p.ifaces[t.Name]; !ok {
					return fmt.Errorf("embedded %s is not an interface declared in this file", t.Name)
				}
				if err := p.collect(t.Name, ch, seen, visiting); err != nil {
					return err
				}
				continue
			default:
				return fmt.Errorf("unsupported embedded element %s", p.expr(field.Type))
			}
		}

		ft, ok := field.Type.(*ast.FuncType)
		if !ok {
			return fmt.Errorf("unsupported interface element %s", p.expr(field.Type))
		}
		for _, id := range field.Names {
			if seen[id.Name] {
				continue
			}
			seen[id.Name] = true
			m, err := p.method(id.Name, ft)
			if err != nil {
				return err
			}
			ch.Methods = append(ch.Methods, m)
		}
	}
	return nil
}

// reserved names would collide with identifiers of the generated code.
var reserved = regexp.MustCompile(`^(x|out|_|r[0-9]+|p[0-9]+)$`)

func (p *fileParser) method(name string, ft *ast.FuncType) (Method, error) {
	if !ast.IsExported(name) {
		return Method{}, fmt.Errorf("method %s is unexported", name)
	}
	if name == "Proxy" {
		return Method{}, errors.New("method name Proxy collides with the embedded *stream.Proxy")
	}

	m := Method{Name: name}
	used := make(map[string]bool)
	i := 0
	for _, field := range ft.Params.List {
		typ := p.expr(field.Type)
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			m.Variadic = true
		}
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, id := range names {
			pname := ""
			if id != nil {
				pname = id.Name
			}
			if pname == "" || reserved.MatchString(pname) || p.taken[pname] || used[pname] {
				pname = "p" + strconv.Itoa(i)
			}
			used[pname] = true
			m.Params = append(m.Params, Param{Name: pname, Type: typ})
			i++
		}
	}

	if ft.Results != nil {
		for _, field := range ft.Results.List {
			n := len(field.Names)
			if n == 0 {
				n = 1
			}
			typ := p.expr(field.Type)
			for range n {
				m.Results = append(m.Results, typ)
			}
		}
	}
	return m, nil
}

func (p *fileParser) expr(e ast.Expr) string {
	var buf bytes.Buffer
	_ = printer.Fprint(&buf, p.fset, e)
	return buf.String()
}
