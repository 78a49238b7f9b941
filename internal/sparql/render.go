package sparql

import (
	"fmt"
	"strings"
)

// sseWriter writes indented S-expressions. A closing parenthesis stays
// on the line of the last child.
type sseWriter struct {
	b      strings.Builder
	indent int
}

func (w *sseWriter) newline() {
	if w.b.Len() > 0 {
		w.b.WriteByte('\n')
		w.b.WriteString(strings.Repeat("  ", w.indent))
	}
}

func (w *sseWriter) open(head string) {
	w.newline()
	w.b.WriteString("(" + head)
	w.indent++
}

func (w *sseWriter) line(s string) {
	w.newline()
	w.b.WriteString(s)
}

func (w *sseWriter) close() {
	w.b.WriteByte(')')
	w.indent--
}

func renderQuery(q *Query) string {
	w := &sseWriter{}
	w.open(q.Form.String())

	if q.Dataset != nil {
		parts := []string{}
		for _, iri := range q.Dataset.Default {
			parts = append(parts, "(from "+iri.String()+")")
		}
		for _, iri := range q.Dataset.Named {
			parts = append(parts, "(named "+iri.String()+")")
		}
		w.line("(dataset " + strings.Join(parts, " ") + ")")
	}

	switch q.Form {
	case FormConstruct:
		if len(q.Template) == 0 {
			w.line("(template)")
		} else {
			w.open("template")
			for _, t := range q.Template {
				w.line(t.String())
			}
			w.close()
		}
	case FormDescribe:
		if len(q.Describe) == 0 {
			w.line("(describe *)")
		} else {
			w.line("(describe " + joinTerms(q.Describe) + ")")
		}
	}

	writePattern(w, q.Pattern)
	w.close()
	return w.b.String()
}

// RenderPattern renders a single algebra node canonically.
func RenderPattern(p GraphPattern) string {
	w := &sseWriter{}
	writePattern(w, p)
	return w.b.String()
}

func writePattern(w *sseWriter, pattern GraphPattern) {
	switch p := pattern.(type) {
	case nil:
		w.line("(null)")
	case *Bgp:
		if len(p.Triples) == 0 {
			w.line("(bgp)")
			return
		}
		w.open("bgp")
		for _, t := range p.Triples {
			w.line(t.String())
		}
		w.close()
	case *PathPattern:
		w.line(fmt.Sprintf("(path %s %s %s)", p.Subject, p.Path, p.Object))
	case *Join:
		writeBinary(w, "join", p.Left, p.Right)
	case *LeftJoin:
		w.open("leftjoin")
		writePattern(w, p.Left)
		writePattern(w, p.Right)
		if p.Expr != "" {
			w.line(string(p.Expr))
		}
		w.close()
	case *Filter:
		w.open("filter " + exprList(p.Exprs))
		writePattern(w, p.Inner)
		w.close()
	case *Union:
		writeBinary(w, "union", p.Left, p.Right)
	case *Minus:
		writeBinary(w, "minus", p.Left, p.Right)
	case *Graph:
		w.open("graph " + p.Name.String())
		writePattern(w, p.Inner)
		w.close()
	case *Service:
		head := "service "
		if p.Silent {
			head += "silent "
		}
		w.open(head + p.Name.String())
		writePattern(w, p.Inner)
		w.close()
	case *Extend:
		w.open(fmt.Sprintf("extend ((%s %s))", p.Variable, p.Expr))
		writePattern(w, p.Inner)
		w.close()
	case *Values:
		writeValues(w, p)
	case *Group:
		w.open("group (" + joinExprs(p.Keys) + ")")
		writePattern(w, p.Inner)
		w.close()
	case *OrderBy:
		conds := make([]string, len(p.Conditions))
		for i, c := range p.Conditions {
			dir := "asc"
			if c.Descending {
				dir = "desc"
			}
			conds[i] = "(" + dir + " " + string(c.Expr) + ")"
		}
		w.open("order (" + strings.Join(conds, " ") + ")")
		writePattern(w, p.Inner)
		w.close()
	case *Project:
		vars := make([]string, len(p.Variables))
		for i, v := range p.Variables {
			if p.IsDistinctVariable(v) {
				vars[i] = "(distinct " + v.String() + ")"
			} else {
				vars[i] = v.String()
			}
		}
		w.open("project (" + strings.Join(vars, " ") + ")")
		writePattern(w, p.Inner)
		w.close()
	case *Distinct:
		w.open("distinct")
		writePattern(w, p.Inner)
		w.close()
	case *Reduced:
		w.open("reduced")
		writePattern(w, p.Inner)
		w.close()
	case *Slice:
		offset, limit := "_", "_"
		if p.Offset > 0 {
			offset = fmt.Sprint(p.Offset)
		}
		if p.Limit >= 0 {
			limit = fmt.Sprint(p.Limit)
		}
		w.open("slice " + offset + " " + limit)
		writePattern(w, p.Inner)
		w.close()
	default:
		w.line(fmt.Sprintf("(unknown %T)", pattern))
	}
}

func writeBinary(w *sseWriter, name string, left, right GraphPattern) {
	w.open(name)
	writePattern(w, left)
	writePattern(w, right)
	w.close()
}

func writeValues(w *sseWriter, v *Values) {
	vars := make([]string, len(v.Variables))
	for i, name := range v.Variables {
		vars[i] = name.String()
	}
	head := "table (vars " + strings.Join(vars, " ") + ")"
	if len(v.Rows) == 0 {
		w.line("(" + head + ")")
		return
	}
	w.open(head)
	for _, row := range v.Rows {
		bindings := []string{}
		for i, t := range row {
			if t == nil {
				continue
			}
			bindings = append(bindings, "("+v.Variables[i].String()+" "+t.String()+")")
		}
		if len(bindings) == 0 {
			w.line("(row)")
		} else {
			w.line("(row " + strings.Join(bindings, " ") + ")")
		}
	}
	w.close()
}

func exprList(exprs []Expression) string {
	if len(exprs) == 1 {
		return string(exprs[0])
	}
	return "(exprlist " + joinExprs(exprs) + ")"
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = string(e)
	}
	return strings.Join(parts, " ")
}

// conjunction joins filter expressions with &&.
func conjunction(exprs []Expression) Expression {
	if len(exprs) == 1 {
		return exprs[0]
	}
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = "(" + string(e) + ")"
	}
	return Expression(strings.Join(parts, " && "))
}

func joinTerms(terms []Term) string {
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
