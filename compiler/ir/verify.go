package ir

import (
	"tlog.app/go/errors"

	"github.com/slowlang/tac/compiler/set"
)

// Verify checks the code is well formed:
// each temp is assigned once and before it is read,
// each label is placed once, every jump goes to a placed label.
func Verify(code Code) error {
	var temps, marked, jumped set.Bitmap

	names := map[string]int{}
	labels := map[int]Label{}

	use := func(i int, x Operand) error {
		if t, ok := x.(Temp); ok && !temps.IsSet(t.ID) {
			return errors.New("instr %d: temp %v read before assignment", i, t.Name)
		}

		return nil
	}

	jump := func(l Label) {
		jumped.Set(l.ID)
		labels[l.ID] = l
	}

	for i, x := range code {
		var err error

		switch x := x.(type) {
		case Decl:
		case Copy:
			err = use(i, x.Src)
		case BinOp:
			if !x.Op.Valid() {
				return errors.New("instr %d: unknown operator %v", i, x.Op)
			}

			if err = use(i, x.Left); err != nil {
				break
			}

			if err = use(i, x.Right); err != nil {
				break
			}

			if temps.IsSet(x.Dst.ID) {
				return errors.New("instr %d: temp %v assigned twice", i, x.Dst.Name)
			}

			if j, ok := names[x.Dst.Name]; ok {
				return errors.New("instr %d: name %v already used at instr %d", i, x.Dst.Name, j)
			}

			temps.Set(x.Dst.ID)
			names[x.Dst.Name] = i
		case Mark:
			if marked.IsSet(x.Label.ID) {
				return errors.New("instr %d: label %v placed twice", i, x.Label.Name)
			}

			if j, ok := names[x.Label.Name]; ok {
				return errors.New("instr %d: name %v already used at instr %d", i, x.Label.Name, j)
			}

			marked.Set(x.Label.ID)
			names[x.Label.Name] = i
		case Goto:
			jump(x.Label)
		case IfFalse:
			err = use(i, x.Cond)

			jump(x.Label)
		default:
			return errors.New("instr %d: unsupported instruction: %T", i, x)
		}

		if err != nil {
			return err
		}
	}

	jumped.AndNot(marked)

	if id := jumped.First(); id >= 0 {
		return errors.New("jump to undefined label %v", labels[id].Name)
	}

	return nil
}
