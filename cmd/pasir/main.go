package main

import (
	"context"
	"fmt"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/pasir/compiler"
	"github.com/slowlang/pasir/compiler/back"
)

func main() {
	checkCmd := &cli.Command{
		Name:        "check",
		Description: "run semantic analysis",
		Action:      checkAct,
		Args:        cli.Args{},
	}

	compileCmd := &cli.Command{
		Name:        "compile",
		Description: "print IR",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	runCmd := &cli.Command{
		Name:        "run",
		Description: "compile and execute",
		Action:      runAct,
		Args:        cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("max-steps", 0, "stop after that many instructions, 0 for no limit"),
		},
	}

	app := &cli.Command{
		Name:        "pasir",
		Description: "pasir checks and compiles pascal-like syntax trees",
		Commands: []*cli.Command{
			checkCmd,
			compileCmd,
			runCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func checkAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		err = compiler.CheckFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "check %v", a)
		}

		fmt.Printf("%v: ok\n", a)
	}

	return nil
}

func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	for _, a := range c.Args {
		obj, err := compiler.CompileFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}

		fmt.Printf("%s", obj)
	}

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	opts := back.Options{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		MaxSteps: c.Int("max-steps"),
	}

	for _, a := range c.Args {
		code, err := compiler.RunFile(ctx, a, opts)
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}

		if code != 0 {
			return errors.New("%v: exit code %d", a, code)
		}
	}

	return nil
}
