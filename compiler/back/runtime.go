package back

import (
	"context"
	"io"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

// printf supports %d %f %c %s and %%.
func printf(ctx context.Context, mc *Machine, args []any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("printf: no format")
	}

	f, ok := args[0].(string)
	if !ok {
		return nil, errors.New("printf: format is %T", args[0])
	}

	args = args[1:]

	var b []byte

	for i := 0; i < len(f); i++ {
		if f[i] != '%' || i+1 == len(f) {
			b = append(b, f[i])
			continue
		}

		i++
		verb := f[i]

		if verb == '%' {
			b = append(b, '%')
			continue
		}

		if len(args) == 0 {
			return nil, errors.New("printf: missing argument for %%%c", verb)
		}

		a := args[0]
		args = args[1:]

		switch verb {
		case 'd':
			b = hfmt.Appendf(b, "%d", a)
		case 'f':
			b = hfmt.Appendf(b, "%f", a)
		case 'c':
			v, ok := a.(int64)
			if !ok {
				return nil, errors.New("printf: %%c of %T", a)
			}

			b = append(b, byte(v))
		case 's':
			if a == nil {
				b = append(b, "(null)"...)
				break
			}

			b = hfmt.Appendf(b, "%s", a)
		default:
			return nil, errors.New("printf: unsupported verb %%%c", verb)
		}
	}

	n, err := mc.out.Write(b)
	if err != nil {
		return nil, errors.Wrap(err, "printf")
	}

	tlog.SpanFromContext(ctx).V("trace_io").Printw("printf", "format", f, "n", n)

	return int64(n), nil
}

// scanf reads a single conversion into the address following the format.
// It returns the number of items read or -1 at end of input.
func scanf(ctx context.Context, mc *Machine, args []any) (any, error) {
	if len(args) != 2 {
		return nil, errors.New("scanf: want format and one target, got %d args", len(args))
	}

	f, ok := args[0].(string)
	if !ok {
		return nil, errors.New("scanf: format is %T", args[0])
	}

	dst, ok := args[1].(addr)
	if !ok {
		return nil, errors.New("scanf: target is %T", args[1])
	}

	var verb byte

	for i := 0; i < len(f); i++ {
		switch {
		case f[i] == ' ':
			err := mc.skipSpace()
			if err == io.EOF {
				return int64(-1), nil
			}
			if err != nil {
				return nil, errors.Wrap(err, "scanf")
			}
		case f[i] == '%' && i+1 < len(f):
			verb = f[i+1]
			i++
		default:
			return nil, errors.New("scanf: unsupported format %q", f)
		}
	}

	var v any

	switch verb {
	case 'c':
		c, err := mc.in.ReadByte()
		if err == io.EOF {
			return int64(-1), nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "scanf")
		}

		v = int64(int8(c))
	case 'd', 'f', 's':
		w, err := mc.word()
		if err == io.EOF && w == "" {
			return int64(-1), nil
		}
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "scanf")
		}

		switch verb {
		case 'd':
			x, err := strconv.ParseInt(w, 10, 64)
			if err != nil {
				return int64(0), nil
			}

			v = x
		case 'f':
			x, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return int64(0), nil
			}

			v = x
		default:
			v = w
		}
	default:
		return nil, errors.New("scanf: unsupported format %q", f)
	}

	dst.m.v[dst.off] = fit(dst.m.t, v)

	tlog.SpanFromContext(ctx).V("trace_io").Printw("scanf", "format", f, "val", v)

	return int64(1), nil
}

func (mc *Machine) skipSpace() error {
	for {
		c, err := mc.in.ReadByte()
		if err != nil {
			return err
		}

		if !isSpace(c) {
			return mc.in.UnreadByte()
		}
	}
}

func (mc *Machine) word() (string, error) {
	err := mc.skipSpace()
	if err != nil {
		return "", err
	}

	var w []byte

	for {
		c, err := mc.in.ReadByte()
		if err != nil {
			return string(w), err
		}

		if isSpace(c) {
			return string(w), mc.in.UnreadByte()
		}

		w = append(w, c)
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
