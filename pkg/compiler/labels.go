package compiler

import (
	"strconv"

	"github.com/google/btree"
)

// LabelInfo is one program line and the number of jumps targeting it.
type LabelInfo struct {
	Line int `yaml:"line"`
	Refs int `yaml:"refs"`
}

type labelItem struct {
	line int
	refs int
}

func (l *labelItem) Less(than btree.Item) bool {
	return l.line < than.(*labelItem).line
}

// labelMap keeps the program's line numbers ordered with their reference
// counts.
type labelMap struct {
	tree *btree.BTree
}

func newLabelMap() *labelMap {
	return &labelMap{tree: btree.New(4)}
}

func (m *labelMap) define(line int) {
	m.tree.ReplaceOrInsert(&labelItem{line: line})
}

func (m *labelMap) lookup(line int) (*labelItem, bool) {
	item := m.tree.Get(&labelItem{line: line})
	if item == nil {
		return nil, false
	}
	return item.(*labelItem), true
}

// ref counts one jump to line and reports whether the line exists.
func (m *labelMap) ref(line int) bool {
	l, ok := m.lookup(line)
	if ok {
		l.refs++
	}
	return ok
}

func (m *labelMap) refs(line int) int {
	if l, ok := m.lookup(line); ok {
		return l.refs
	}
	return 0
}

// first returns the lowest line number.
func (m *labelMap) first() (int, bool) {
	item := m.tree.Min()
	if item == nil {
		return 0, false
	}
	return item.(*labelItem).line, true
}

func (m *labelMap) all() []LabelInfo {
	infos := make([]LabelInfo, 0, m.tree.Len())
	m.tree.Ascend(func(item btree.Item) bool {
		l := item.(*labelItem)
		infos = append(infos, LabelInfo{Line: l.line, Refs: l.refs})
		return true
	})
	return infos
}

func (m *labelMap) unreferenced() []int {
	var lines []int
	m.tree.Ascend(func(item btree.Item) bool {
		if l := item.(*labelItem); l.refs == 0 {
			lines = append(lines, l.line)
		}
		return true
	})
	return lines
}

// lineTargets are the commands whose line number arguments are jump
// targets. Other line arguments (RESTORE, EDIT) must exist but do not
// make a line reachable.
var lineTargets = map[string]bool{
	"goto": true, "gosub": true, "onGoto": true, "onGosub": true,
	"onErrorGoto": true, "onBreakGosub": true, "onSqGosub": true,
	"afterGosub": true, "everyGosub": true, "resume": true, "run": true,
}

// relinks are the commands after which any line may be entered, so no line
// can be proven unreachable.
var relinks = map[string]bool{
	"merge": true, "chainMerge": true, "resumeNext": true,
}

// scanReferences counts the jumps to every line and checks that every
// referenced line exists. It reports whether dead labels may be removed.
func (cg *CodeGen) scanReferences(lines []*Node) (bool, error) {
	removable := true
	for i, line := range lines {
		cg.current = cg.labels[i]
		for _, st := range line.Args {
			var err error
			Walk(st, func(n *Node) {
				if err != nil || n.Kind != KindCommand {
					return
				}
				if relinks[n.Value] || (n.Value == "resume" && len(n.Args) == 0) {
					removable = false
				}
				err = cg.checkLineArgs(n)
			})
			if err != nil {
				return false, err
			}
		}
	}
	return removable, nil
}

func (cg *CodeGen) checkLineArgs(cmd *Node) error {
	isTarget := lineTargets[cmd.Value]
	for _, arg := range cmd.Args {
		switch {
		case arg.Kind == KindLinenumber:
		case cmd.Value == "run" && arg.Kind == KindNumber:
		default:
			continue
		}
		n, err := strconv.Atoi(arg.Value)
		if err != nil {
			return cg.errorf(arg, ErrLineExpected, "Expected line number")
		}
		if n == 0 && cmd.Value == "onErrorGoto" {
			continue
		}
		if isTarget {
			if !cg.refs.ref(n) {
				return cg.errorf(arg, ErrLineNotFound, "Line does not exist")
			}
			continue
		}
		if _, ok := cg.refs.lookup(n); !ok {
			return cg.errorf(arg, ErrLineNotFound, "Line does not exist")
		}
	}
	return nil
}
