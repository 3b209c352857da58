package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads a recipe file line by line and returns the fully built
// Recipe, or the first ParseError encountered. Canonical test names are
// assigned only after every line has been consumed.
func Parse(lines []string) (*Recipe, error) {
	p := &parser{
		constants:     newConstantTable(),
		testsetByName: map[string]*Testset{},
		subtaskByName: map[string]*Subtask{},
		usedNames:     map[string]bool{},
	}
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.line(line); err != nil {
			return nil, &ParseError{Line: i + 1, Message: err.Error()}
		}
	}
	return p.finish(), nil
}

type context int

const (
	contextNone context = iota
	contextTestset
	contextSubtask
)

type parser struct {
	constants *constantTable

	testsets []*Testset
	subtasks []*Subtask

	testsetByName map[string]*Testset
	subtaskByName map[string]*Subtask
	usedNames     map[string]bool

	global []Command

	ctx         context
	curTestset  *Testset
	curSubtask  *Subtask
	testsetSeq  int
	subtaskSeq  int
}

var directiveNames = []string{
	"testset", "subtask", "global_validation", "description",
	"include", "validation", "constant", "extra_file",
}

func (p *parser) line(line string) error {
	if strings.HasPrefix(line, "@") {
		return p.directive(line[1:])
	}

	var ts *Testset
	switch p.ctx {
	case contextTestset:
		ts = p.curTestset
	case contextSubtask:
		ts = p.ensureInlineTestset()
	default:
		return fmt.Errorf("test generation commands can only appear inside a @testset or @subtask block")
	}

	expanded, err := p.constants.expand(line)
	if err != nil {
		return err
	}
	cmds, err := splitPipeline(expanded)
	if err != nil {
		return err
	}
	ts.Tests = append(ts.Tests, &Testcase{Pipeline: cmds})
	return nil
}

// ensureInlineTestset returns the current subtask's embedded testset,
// creating it (named after the subtask, auto-included in it) the first
// time inline tests or an extra file appear directly under the
// @subtask block.
func (p *parser) ensureInlineTestset() *Testset {
	if p.curSubtask.InlineTestset != nil {
		return p.curSubtask.InlineTestset
	}
	p.testsetSeq++
	ts := &Testset{Name: p.curSubtask.Name, Index: p.testsetSeq}
	p.testsets = append(p.testsets, ts)
	p.testsetByName[ts.Name] = ts
	p.curSubtask.testsets[ts.Name] = true
	p.curSubtask.InlineTestset = ts
	return ts
}

func (p *parser) directive(rest string) error {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return fmt.Errorf("empty directive after '@'")
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "testset":
		return p.handleTestset(args)
	case "subtask":
		return p.handleSubtask(args)
	case "global_validation":
		return p.handleGlobalValidation(args)
	case "description":
		return p.handleDescription(args)
	case "include":
		return p.handleInclude(args)
	case "validation":
		return p.handleValidation(args)
	case "constant":
		return p.handleConstant(args)
	case "extra_file":
		return p.handleExtraFile(args)
	default:
		msg := fmt.Sprintf("unknown directive @%s", name)
		return fmt.Errorf("%s", suggest(msg, name, directiveNames))
	}
}

func (p *parser) claimName(name string) error {
	if p.usedNames[name] {
		return fmt.Errorf("name %q already used by another testset or subtask", name)
	}
	p.usedNames[name] = true
	return nil
}

func (p *parser) handleTestset(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("@testset requires exactly 1 argument, got %d", len(args))
	}
	name := args[0]
	if err := p.claimName(name); err != nil {
		return err
	}
	p.testsetSeq++
	ts := &Testset{Name: name, Index: p.testsetSeq}
	p.testsets = append(p.testsets, ts)
	p.testsetByName[name] = ts
	p.ctx = contextTestset
	p.curTestset = ts
	p.curSubtask = nil
	return nil
}

func (p *parser) handleSubtask(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("@subtask requires exactly 2 arguments (name, score), got %d", len(args))
	}
	name := args[0]
	score, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid score %q for subtask %q", args[1], name)
	}
	if err := p.claimName(name); err != nil {
		return err
	}
	p.subtaskSeq++
	st := &Subtask{Name: name, Index: p.subtaskSeq, Score: score, testsets: map[string]bool{}}
	p.subtasks = append(p.subtasks, st)
	p.subtaskByName[name] = st
	p.ctx = contextSubtask
	p.curSubtask = st
	p.curTestset = nil
	return nil
}

func (p *parser) handleGlobalValidation(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("@global_validation requires at least 1 argument")
	}
	expanded, err := p.constants.expandAll(args)
	if err != nil {
		return err
	}
	p.global = append(p.global, Command{Program: expanded[0], Args: expanded[1:]})
	p.ctx = contextNone
	p.curTestset = nil
	p.curSubtask = nil
	return nil
}

func (p *parser) handleDescription(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("@description requires at least 1 argument")
	}
	if p.ctx == contextNone {
		return fmt.Errorf("@description can only be used within a testset or subtask")
	}
	expanded, err := p.constants.expandAll(args)
	if err != nil {
		return err
	}
	text := strings.Join(expanded, " ")
	if p.ctx == contextTestset {
		if p.curTestset.Description != "" {
			return fmt.Errorf("description already set for testset %q", p.curTestset.Name)
		}
		p.curTestset.Description = text
	} else {
		if p.curSubtask.Description != "" {
			return fmt.Errorf("description already set for subtask %q", p.curSubtask.Name)
		}
		p.curSubtask.Description = text
	}
	return nil
}

func (p *parser) handleInclude(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("@include requires exactly 1 argument")
	}
	if p.ctx != contextSubtask {
		return fmt.Errorf("@include can only be used within a subtask")
	}
	name := args[0]
	if _, ok := p.testsetByName[name]; ok {
		p.curSubtask.testsets[name] = true
		return nil
	}
	if ref, ok := p.subtaskByName[name]; ok {
		for ts := range ref.testsets {
			p.curSubtask.testsets[ts] = true
		}
		return nil
	}
	candidates := make([]string, 0, len(p.testsetByName)+len(p.subtaskByName))
	for n := range p.testsetByName {
		candidates = append(candidates, n)
	}
	for n := range p.subtaskByName {
		candidates = append(candidates, n)
	}
	msg := fmt.Sprintf("unknown testset or subtask %q", name)
	return fmt.Errorf("%s", suggest(msg, name, candidates))
}

func (p *parser) handleValidation(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("@validation requires at least 1 argument")
	}
	expanded, err := p.constants.expandAll(args)
	if err != nil {
		return err
	}
	cmd := Command{Program: expanded[0], Args: expanded[1:]}
	switch p.ctx {
	case contextSubtask:
		p.curSubtask.Validators = append(p.curSubtask.Validators, cmd)
	case contextTestset:
		p.curTestset.Validators = append(p.curTestset.Validators, cmd)
	default:
		return fmt.Errorf("@validation can only be used within a testset or subtask")
	}
	return nil
}

func (p *parser) handleConstant(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("@constant requires exactly 2 arguments (name, value)")
	}
	return p.constants.define(args[0], args[1])
}

func (p *parser) handleExtraFile(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("@extra_file requires exactly 2 arguments (constant name, extension)")
	}

	var ts *Testset
	switch p.ctx {
	case contextTestset:
		ts = p.curTestset
	case contextSubtask:
		ts = p.ensureInlineTestset()
	default:
		return fmt.Errorf("@extra_file can only be used within a testset or subtask")
	}

	constName, ext := args[0], args[1]
	if !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("extra file extension %q must start with '.'", ext)
	}
	for _, existing := range ts.ExtraFiles {
		if existing == ext {
			return fmt.Errorf("extra file %q already added for testset %q", ext, ts.Name)
		}
	}
	ts.ExtraFiles = append(ts.ExtraFiles, ext)
	return p.constants.define(constName, extraFileValue(ext))
}

func (p *parser) finish() *Recipe {
	assignTestNames(p.testsets)

	r := &Recipe{
		Testsets:         p.testsets,
		Subtasks:         p.subtasks,
		GlobalValidators: p.global,
		Constants:        map[string]string{},
		testsetByName:    p.testsetByName,
		subtaskByName:    p.subtaskByName,
	}
	for _, name := range p.constants.names() {
		r.Constants[name] = p.constants.values[name]
	}
	return r
}

// splitPipeline turns "prog1 a b | prog2 c" into its Command chain.
func splitPipeline(line string) ([]Command, error) {
	segments := strings.Split(line, "|")
	cmds := make([]Command, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return nil, fmt.Errorf("empty command in pipeline")
		}
		fields := strings.Fields(seg)
		cmds = append(cmds, Command{Program: fields[0], Args: fields[1:]})
	}
	return cmds, nil
}
