package render

import (
	"sort"
	"text/template"
	"text/template/parse"
)

// References returns the sorted variable names referenced by a template
// source. The answers resolver uses this to build the derivation graph, and
// content rendering uses it to report missing variables precisely.
func References(name, templateStr string) ([]string, error) {
	tmpl, err := template.New(name).Funcs(defaultFuncMap()).Parse(templateStr)
	if err != nil {
		return nil, err
	}
	return referencesOf(tmpl), nil
}

// referencesOf extracts top-level field references from a parsed template.
// Only the first identifier of each field chain matters: {{ .owner.name }}
// references the variable "owner".
func referencesOf(tmpl *template.Template) []string {
	set := make(map[string]bool)
	for _, t := range tmpl.Templates() {
		if t.Tree != nil && t.Tree.Root != nil {
			walkNode(t.Tree.Root, set)
		}
	}

	refs := make([]string, 0, len(set))
	for name := range set {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

func walkNode(node parse.Node, set map[string]bool) {
	switch n := node.(type) {
	case *parse.ListNode:
		if n == nil {
			return
		}
		for _, child := range n.Nodes {
			walkNode(child, set)
		}
	case *parse.ActionNode:
		walkPipe(n.Pipe, set)
	case *parse.IfNode:
		walkBranch(&n.BranchNode, set)
	case *parse.RangeNode:
		walkBranch(&n.BranchNode, set)
	case *parse.WithNode:
		walkBranch(&n.BranchNode, set)
	case *parse.TemplateNode:
		walkPipe(n.Pipe, set)
	}
}

func walkBranch(branch *parse.BranchNode, set map[string]bool) {
	walkPipe(branch.Pipe, set)
	if branch.List != nil {
		walkNode(branch.List, set)
	}
	if branch.ElseList != nil {
		walkNode(branch.ElseList, set)
	}
}

func walkPipe(pipe *parse.PipeNode, set map[string]bool) {
	if pipe == nil {
		return
	}
	for _, cmd := range pipe.Cmds {
		for _, arg := range cmd.Args {
			switch a := arg.(type) {
			case *parse.FieldNode:
				if len(a.Ident) > 0 {
					set[a.Ident[0]] = true
				}
			case *parse.ChainNode:
				walkNode(a.Node, set)
			case *parse.PipeNode:
				walkPipe(a, set)
			}
		}
	}
}
