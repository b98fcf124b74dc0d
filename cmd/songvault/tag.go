package main

import (
	"errors"
	"fmt"

	"github.com/llehouerou/songvault/internal/config"
	"github.com/llehouerou/songvault/internal/errmsg"
	"github.com/llehouerou/songvault/internal/id3win"
	"github.com/llehouerou/songvault/internal/render"
)

// cmdTag works on any file directly; it never touches the catalog.
func (a *app) cmdTag(args []string) error {
	if len(args) == 0 {
		return usageError{"usage: songvault tag read|write|dump <file> ..."}
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "read":
		if err := wantArgs("tag read", rest, 1, 1, "<file>"); err != nil {
			return err
		}
		fields, err := id3win.ReadFile(rest[0])
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpTagRead, rest[0], err))
		}
		a.out.Fields(fields)
		return nil

	case "write":
		if err := wantArgs("tag write", rest, 3, 3, "<file> <field> <value>"); err != nil {
			return err
		}
		field, ok := id3win.ParseField(rest[1])
		if !ok {
			return usageError{fmt.Sprintf("unknown tag field %q", rest[1])}
		}
		res, err := id3win.WriteFieldResult(rest[0], field, rest[2])
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpTagWrite, rest[0], err))
		}
		if !res.Written {
			a.out.Warning("no change: %v", res.Reason)
			return nil
		}
		a.log.Debug().
			Str("field", string(field)).
			Int("offset", res.Offset).
			Uint32("old_size", res.OldSize).
			Uint32("new_size", res.NewSize).
			Msg("tag written")
		a.out.Success("%s written", field)
		return nil

	case "dump":
		if err := wantArgs("tag dump", rest, 1, 1, "<file>"); err != nil {
			return err
		}
		h, frames, ok, err := id3win.ScanFile(rest[0])
		if err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpTagDump, rest[0], err))
		}
		if !ok {
			a.out.Warning("no tag window")
			return nil
		}
		a.out.Frames(h, frames)
		return nil

	default:
		return usageError{fmt.Sprintf("unknown tag command %q", sub)}
	}
}

func runConfig(out *render.Printer, args []string) error {
	if len(args) == 0 || args[0] != "init" {
		return usageError{"usage: songvault config init [path] [--force]"}
	}
	fs := newFlagSet("config init", out.Writer())
	force := fs.Bool("force", false, "overwrite an existing file")
	pos, err := parseArgs(fs, args[1:])
	if err != nil {
		return err
	}
	if err := wantArgs("config init", pos, 0, 1, "[path] [--force]"); err != nil {
		return err
	}
	var path string
	if len(pos) == 1 {
		path = pos[0]
	}

	written, err := config.WriteDefault(path, *force)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpConfigWrite, written, err))
	}
	out.Success("wrote %s", written)
	return nil
}
