// Package gomember resolves member references such as "Type.Method(int, string)"
// against Go source files.
package gomember

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
)

// ErrNotMember is returned by ParseRef when a fragment is not a member reference.
var ErrNotMember = errors.New("not a member reference")

// Ref is a parsed member reference.
type Ref struct {
	// Receiver is the owning type for methods and fields, empty for package-level names.
	Receiver string

	// Name is the member name.
	Name string

	// Params holds the parameter types when the reference has a parameter list.
	Params []string

	// HasParams distinguishes "F()" from "F".
	HasParams bool
}

func (r Ref) String() string {
	name := r.Name
	if r.Receiver != "" {
		name = r.Receiver + "." + name
	}
	if r.HasParams {
		name += "(" + strings.Join(r.Params, ", ") + ")"
	}
	return name
}

// ParseRef parses a fragment like "Name", "Recv.Name" or "Recv.Name(T1, map[K]V)".
func ParseRef(fragment string) (Ref, error) {
	fragment = strings.TrimSpace(fragment)

	var ref Ref
	head := fragment
	if open := strings.IndexByte(fragment, '('); open >= 0 {
		if !strings.HasSuffix(fragment, ")") {
			return Ref{}, fmt.Errorf("%w: unterminated parameter list in %q", ErrNotMember, fragment)
		}
		params, err := SplitParams(fragment[open+1 : len(fragment)-1])
		if err != nil {
			return Ref{}, fmt.Errorf("%w: %w", ErrNotMember, err)
		}
		ref.Params = params
		ref.HasParams = true
		head = fragment[:open]
	}

	parts := strings.Split(head, ".")
	switch len(parts) {
	case 1:
		ref.Name = parts[0]
	case 2:
		ref.Receiver, ref.Name = parts[0], parts[1]
		if !token.IsIdentifier(ref.Receiver) {
			return Ref{}, fmt.Errorf("%w: invalid receiver %q", ErrNotMember, ref.Receiver)
		}
	default:
		return Ref{}, fmt.Errorf("%w: %q", ErrNotMember, head)
	}
	if !token.IsIdentifier(ref.Name) {
		return Ref{}, fmt.Errorf("%w: invalid name %q", ErrNotMember, ref.Name)
	}

	return ref, nil
}

// SplitParams splits a comma separated parameter type list, ignoring commas
// nested inside (), [], {} or <>.
func SplitParams(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return []string{}, nil
	}

	var (
		params []string
		stack  []byte
		start  int
	)
	closers := map[byte]byte{')': '(', ']': '[', '}': '{', '>': '<'}

	for idx := range len(list) {
		ch := list[idx]
		if ch == '<' && idx+1 < len(list) && list[idx+1] == '-' {
			// Channel direction arrow.
			continue
		}
		switch ch {
		case '(', '[', '{', '<':
			stack = append(stack, ch)
		case ')', ']', '}', '>':
			if len(stack) == 0 || stack[len(stack)-1] != closers[ch] {
				return nil, fmt.Errorf("unbalanced %q at offset %d", ch, idx)
			}
			stack = stack[:len(stack)-1]
		case ',':
			if len(stack) == 0 {
				params = append(params, strings.TrimSpace(list[start:idx]))
				start = idx + 1
			}
		}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}

	return append(params, strings.TrimSpace(list[start:])), nil
}

// Lookup reports whether the Go source declares the referenced member.
func Lookup(src []byte, ref Ref) (bool, error) {
	file, err := parser.ParseFile(token.NewFileSet(), "", src, parser.SkipObjectResolution)
	if err != nil {
		return false, fmt.Errorf("parse go source: %w", err)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			if matchFunc(d, ref) {
				return true, nil
			}
		case *ast.GenDecl:
			if matchGen(d, ref) {
				return true, nil
			}
		}
	}
	return false, nil
}

func matchFunc(fn *ast.FuncDecl, ref Ref) bool {
	if fn.Name.Name != ref.Name {
		return false
	}
	if ref.Receiver == "" {
		return fn.Recv == nil && paramsMatch(fn.Type, ref)
	}
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return false
	}
	return receiverName(fn.Recv.List[0].Type) == ref.Receiver && paramsMatch(fn.Type, ref)
}

func matchGen(gen *ast.GenDecl, ref Ref) bool {
	for _, spec := range gen.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if ref.Receiver == "" && s.Name.Name == ref.Name && !ref.HasParams {
				return true
			}
			if ref.Receiver == s.Name.Name && matchTypeMember(s.Type, ref) {
				return true
			}
		case *ast.ValueSpec:
			if ref.Receiver != "" || ref.HasParams {
				continue
			}
			for _, name := range s.Names {
				if name.Name == ref.Name {
					return true
				}
			}
		}
	}
	return false
}

// matchTypeMember looks for a struct field or interface method.
func matchTypeMember(expr ast.Expr, ref Ref) bool {
	var fields *ast.FieldList
	switch t := expr.(type) {
	case *ast.StructType:
		fields = t.Fields
	case *ast.InterfaceType:
		fields = t.Methods
	default:
		return false
	}
	if fields == nil {
		return false
	}

	for _, field := range fields.List {
		if len(field.Names) == 0 {
			if !ref.HasParams && receiverName(field.Type) == ref.Name {
				return true
			}
			continue
		}
		for _, name := range field.Names {
			if name.Name != ref.Name {
				continue
			}
			if fn, isFunc := field.Type.(*ast.FuncType); isFunc {
				if paramsMatch(fn, ref) {
					return true
				}
				continue
			}
			if !ref.HasParams {
				return true
			}
		}
	}
	return false
}

// receiverName strips pointers, qualifiers and type parameters from a type expression.
func receiverName(expr ast.Expr) string {
	for {
		switch t := expr.(type) {
		case *ast.StarExpr:
			expr = t.X
		case *ast.IndexExpr:
			expr = t.X
		case *ast.IndexListExpr:
			expr = t.X
		case *ast.ParenExpr:
			expr = t.X
		case *ast.SelectorExpr:
			return t.Sel.Name
		case *ast.Ident:
			return t.Name
		default:
			return ""
		}
	}
}

func paramsMatch(fn *ast.FuncType, ref Ref) bool {
	if !ref.HasParams {
		return true
	}

	var declared []string
	if fn.Params != nil {
		for _, field := range fn.Params.List {
			typ := types.ExprString(field.Type)
			for range max(1, len(field.Names)) {
				declared = append(declared, typ)
			}
		}
	}

	if len(declared) != len(ref.Params) {
		return false
	}
	for idx := range declared {
		if compact(declared[idx]) != compact(ref.Params[idx]) {
			return false
		}
	}
	return true
}

func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
