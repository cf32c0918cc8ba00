package bootstrap

import (
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/funvibe/oolong/internal/dispatch"
)

func installMisc(e *dispatch.Engine, out io.Writer) error {
	return registerAll(e, []entry{
		{"uuid", func() string { return uuid.NewString() }},

		// fail aborts the current evaluation with msg. The prelude builds
		// assert on top of it.
		{"fail", func(msg string) error { return errors.New(msg) }},
	})
}
