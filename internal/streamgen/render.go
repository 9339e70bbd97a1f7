package streamgen

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/tools/imports"
)

// Header marks generated files.
const Header = "// Code generated by streamgen. DO NOT EDIT."

// Render emits the proxy source for f. Unused imports carried over from the
// source file are dropped and the result is gofmt-formatted.
func Render(f *File) ([]byte, error) {
	if f == nil || len(f.Channels) == 0 {
		return nil, ErrNoChannels
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s\n\npackage %s\n\n", Header, f.Package)

	b.WriteString("import (\n")
	for _, imp := range f.Imports {
		if imp.Name == "_" || imp.Name == "." {
			continue
		}
		if imp.Name != "" {
			fmt.Fprintf(&b, "\t%s %s\n", imp.Name, strconv.Quote(imp.Path))
		} else {
			fmt.Fprintf(&b, "\t%s\n", strconv.Quote(imp.Path))
		}
	}
	b.WriteString(")\n\n")

	s := f.StreamName
	b.WriteString("func init() {\n")
	for _, ch := range f.Channels {
		fmt.Fprintf(&b, "\t%s.RegisterProxy(func(p *%s.Proxy) %s { return %s{p} })\n", s, s, ch.Name, proxyName(ch.Name))
	}
	b.WriteString("}\n")

	for _, ch := range f.Channels {
		name := proxyName(ch.Name)
		fmt.Fprintf(&b, "\ntype %s struct{ *%s.Proxy }\n", name, s)
		for _, m := range ch.Methods {
			b.WriteByte('\n')
			writeMethod(&b, name, m)
		}
	}

	out, err := imports.Process(f.Filename, b.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("streamgen: format output: %w", err)
	}
	return out, nil
}

func writeMethod(b *bytes.Buffer, recv string, m Method) {
	params := make([]string, len(m.Params))
	args := []string{strconv.Quote(m.Name)}
	for i, p := range m.Params {
		params[i] = p.Name + " " + p.Type
		args = append(args, p.Name)
	}

	results := strings.Join(m.Results, ", ")
	if len(m.Results) > 1 {
		results = "(" + results + ")"
	}
	if results != "" {
		results = " " + results
	}

	fmt.Fprintf(b, "func (x %s) %s(%s)%s {\n", recv, m.Name, strings.Join(params, ", "), results)
	call := fmt.Sprintf("x.Proxy.Invoke(%s)", strings.Join(args, ", "))
	if len(m.Results) == 0 {
		fmt.Fprintf(b, "\t%s\n}\n", call)
		return
	}

	fmt.Fprintf(b, "\tout := %s\n", call)
	rets := make([]string, len(m.Results))
	for i, typ := range m.Results {
		rets[i] = "r" + strconv.Itoa(i)
		fmt.Fprintf(b, "\t%s, _ := out[%d].(%s)\n", rets[i], i, typ)
	}
	fmt.Fprintf(b, "\treturn %s\n}\n", strings.Join(rets, ", "))
}

// proxyName lower-cases the leading letter of the channel name.
func proxyName(channel string) string {
	r, n := utf8.DecodeRuneInString(channel)
	return string(unicode.ToLower(r)) + channel[n:] + "Proxy"
}

// OutputPath derives the generated file name from a source file name.
func OutputPath(source string) string {
	return strings.TrimSuffix(source, ".go") + "_stream.go"
}
