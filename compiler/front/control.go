package front

import (
	"context"

	"tlog.app/go/errors"

	"github.com/slowlang/pasir/compiler/ast"
	"github.com/slowlang/pasir/compiler/ir"
)

func (f *Front) genIf(ctx context.Context, x *ast.If) error {
	c, err := f.cond(ctx, x.Cond)
	if err != nil {
		return err
	}

	fn := f.b.Func()

	then := f.b.NewBlock("if.then")
	els := f.b.NewBlock("if.else")
	end := f.b.NewBlock("if.end")

	f.b.CondBr(c, then, els)

	f.b.SetInsertPoint(fn, then)

	err = f.genScope(ctx, x.Then)
	if err != nil {
		return errors.Wrap(err, "then")
	}

	f.branch(end)

	f.b.SetInsertPoint(fn, els)

	err = f.genScope(ctx, x.Else)
	if err != nil {
		return errors.Wrap(err, "else")
	}

	f.branch(end)

	f.b.SetInsertPoint(fn, end)

	return nil
}

// genWhile tests before the body.
func (f *Front) genWhile(ctx context.Context, x *ast.While) error {
	fn := f.b.Func()

	cond := f.b.NewBlock("while.cond")
	body := f.b.NewBlock("while.body")
	end := f.b.NewBlock("while.end")

	f.b.Br(cond)

	f.b.SetInsertPoint(fn, cond)

	c, err := f.cond(ctx, x.Cond)
	if err != nil {
		return err
	}

	f.b.CondBr(c, body, end)

	f.b.SetInsertPoint(fn, body)

	err = f.genScope(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "body")
	}

	f.branch(cond)

	f.b.SetInsertPoint(fn, end)

	return nil
}

// genRepeat runs the body once, then loops while the condition is false.
func (f *Front) genRepeat(ctx context.Context, x *ast.Repeat) error {
	fn := f.b.Func()

	body := f.b.NewBlock("repeat.body")
	cond := f.b.NewBlock("repeat.cond")
	end := f.b.NewBlock("repeat.end")

	f.syms.EnterScope()
	defer f.syms.ExitScope()

	f.b.Br(body)

	f.b.SetInsertPoint(fn, body)

	err := f.genList(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "body")
	}

	f.branch(cond)

	f.b.SetInsertPoint(fn, cond)

	c, err := f.cond(ctx, x.Cond)
	if err != nil {
		return err
	}

	f.b.CondBr(c, end, body)

	f.b.SetInsertPoint(fn, end)

	return nil
}

// genFor lowers init once, then tests, runs the body and the step.
func (f *Front) genFor(ctx context.Context, x *ast.For) error {
	f.syms.EnterScope()
	defer f.syms.ExitScope()

	_, err := f.gen(ctx, x.Init)
	if err != nil {
		return errors.Wrap(err, "init")
	}

	fn := f.b.Func()

	cond := f.b.NewBlock("for.cond")
	body := f.b.NewBlock("for.body")
	end := f.b.NewBlock("for.end")

	f.b.Br(cond)

	f.b.SetInsertPoint(fn, cond)

	c, err := f.cond(ctx, x.Cond)
	if err != nil {
		return err
	}

	f.b.CondBr(c, body, end)

	f.b.SetInsertPoint(fn, body)

	err = f.genList(ctx, x.Body)
	if err != nil {
		return errors.Wrap(err, "body")
	}

	_, err = f.gen(ctx, x.Step)
	if err != nil {
		return errors.Wrap(err, "step")
	}

	f.branch(cond)

	f.b.SetInsertPoint(fn, end)

	return nil
}

// branch jumps to b unless the current block already returned.
func (f *Front) branch(to *ir.Block) {
	if f.b.Block().Terminated() {
		return
	}

	f.b.Br(to)
}
