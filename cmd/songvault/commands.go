package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llehouerou/songvault/internal/errmsg"
	"github.com/llehouerou/songvault/internal/export"
	"github.com/llehouerou/songvault/internal/library"
)

// listColumns are shown by the table commands.
var listColumns = []library.Column{
	library.ColTitle,
	library.ColArtist,
	library.ColAlbum,
	library.ColReleaseYear,
	library.ColTrackNumber,
	library.ColTrackLength,
}

func (a *app) cmdAdd(ctx context.Context, args []string) error {
	values := fieldFlag{}
	fs := newFlagSet("add", a.errOut.Writer())
	fs.Var(values, "field", "column value as Name=Value (repeatable)")
	shortcuts := map[library.Column]*string{
		library.ColTitle:  fs.String("title", "", "title"),
		library.ColArtist: fs.String("artist", "", "artist"),
		library.ColAlbum:  fs.String("album", "", "album"),
		library.ColGenre:  fs.String("genre", "", "genre"),
	}
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("add", pos, 1, 1, "<file> [flags]"); err != nil {
		return err
	}
	for col, v := range shortcuts {
		if *v != "" {
			values[col] = *v
		}
	}

	meta, err := library.MetadataFromValues(values)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpSongAdd, filepath.Base(pos[0]), err))
	}

	lib, err := a.library()
	if err != nil {
		return err
	}
	song, err := lib.Add(ctx, pos[0], meta)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpSongAdd, filepath.Base(pos[0]), err))
	}
	a.out.Success("added %s", song.FileName)
	a.out.Song(song)
	return nil
}

func (a *app) cmdRemove(args []string) error {
	fs := newFlagSet("rm", a.errOut.Writer())
	keep := fs.Bool("keep-file", false, "keep the stored file on disk")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("rm", pos, 1, 1, "<id> [--keep-file]"); err != nil {
		return err
	}

	lib, err := a.library()
	if err != nil {
		return err
	}
	if err := lib.Delete(pos[0], !*keep); err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpSongDelete, pos[0], err))
	}
	a.out.Success("deleted %s", pos[0])
	return nil
}

func (a *app) cmdShow(args []string) error {
	if err := wantArgs("show", args, 1, 1, "<id>"); err != nil {
		return err
	}
	lib, err := a.library()
	if err != nil {
		return err
	}
	song, err := lib.Get(args[0])
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpSongShow, args[0], err))
	}
	a.out.Song(song)
	return nil
}

func (a *app) cmdList(args []string) error {
	if err := wantArgs("list", args, 0, 0, ""); err != nil {
		return err
	}
	lib, err := a.library()
	if err != nil {
		return err
	}
	songs, err := lib.List()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSongList, err))
	}
	a.out.Songs(songs, listColumns)
	return nil
}

func (a *app) cmdEdit(args []string) error {
	values := fieldFlag{}
	fs := newFlagSet("edit", a.errOut.Writer())
	fs.Var(values, "field", "column value as Name=Value (repeatable)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("edit", pos, 1, 1, "<id> --field Name=Value ..."); err != nil {
		return err
	}
	if len(values) == 0 {
		return usageError{"edit: at least one --field is required"}
	}

	lib, err := a.library()
	if err != nil {
		return err
	}
	res, err := lib.Modify(pos[0], values)
	if res == nil {
		return errors.New(errmsg.FormatWith(errmsg.OpSongEdit, pos[0], err))
	}

	for _, w := range res.TagWrites {
		switch {
		case w.Written:
			a.out.Success("tag %s updated", w.Field)
		case w.Reason != nil:
			a.out.Warning("tag %s not updated: %v", w.Field, w.Reason)
		}
	}
	a.out.Song(res.Song)
	if err != nil {
		// The catalog change is committed; only the file write failed.
		return errors.New(errmsg.FormatWith(errmsg.OpTagWrite, res.Song.FileName, err))
	}
	return nil
}

func (a *app) cmdSearch(args []string) error {
	criteria := fieldFlag{}
	fs := newFlagSet("search", a.errOut.Writer())
	fs.Var(criteria, "field", "substring criterion as Name=Value (repeatable)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("search", pos, 0, 0, "[--field Name=Value ...]"); err != nil {
		return err
	}

	lib, err := a.library()
	if err != nil {
		return err
	}
	songs, err := lib.Search(criteria)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpSearch, err))
	}
	a.out.Songs(songs, searchColumns(criteria))
	return nil
}

// searchColumns adds the searched columns to the default table.
func searchColumns(criteria fieldFlag) []library.Column {
	cols := append([]library.Column(nil), listColumns...)
	for _, c := range library.Columns() {
		if _, ok := criteria[c]; ok && !containsColumn(cols, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func containsColumn(cols []library.Column, c library.Column) bool {
	for _, x := range cols {
		if x == c {
			return true
		}
	}
	return false
}

func (a *app) cmdFind(args []string) error {
	if err := wantArgs("find", args, 1, -1, "<text>"); err != nil {
		return err
	}
	lib, err := a.library()
	if err != nil {
		return err
	}
	songs, err := lib.Find(strings.Join(args, " "))
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpFind, err))
	}
	a.out.Songs(songs, listColumns)
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	criteria := fieldFlag{}
	fs := newFlagSet("export", a.errOut.Writer())
	fs.Var(criteria, "field", "only export songs matching Name=Value (repeatable)")
	structure := fs.String("structure", a.cfg.Export.Structure, "flat|hierarchical|single")
	workers := fs.Int("workers", a.cfg.Export.Workers, "parallel copies (1-16)")
	pos, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if err := wantArgs("export", pos, 1, 1, "<dest> [flags]"); err != nil {
		return err
	}
	fstruct, err := export.ParseFolderStructure(*structure)
	if err != nil {
		return usageError{err.Error()}
	}

	lib, err := a.library()
	if err != nil {
		return err
	}
	songs, err := lib.Search(criteria)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpExport, err))
	}
	tracks := make([]export.Track, len(songs))
	for i, s := range songs {
		tracks[i] = export.FromSong(s)
	}

	exp := export.NewExporter(fstruct, a.log,
		export.WithWorkers(*workers),
		export.WithProgress(func(done, total int) {
			a.log.Debug().Int("done", done).Int("total", total).Msg("export progress")
		}),
	)
	summary, err := exp.Export(ctx, tracks, pos[0])
	for _, f := range summary.Failed {
		a.out.Warning("%v", f)
	}
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpExport, pos[0], err))
	}
	if len(summary.Failed) > 0 {
		return errors.New(errmsg.FormatWith(errmsg.OpExport, pos[0], fmt.Errorf("%s", summary)))
	}
	a.out.Success("%s", summary)
	return nil
}

func (a *app) cmdReindex(args []string) error {
	if err := wantArgs("reindex", args, 0, 0, ""); err != nil {
		return err
	}
	lib, err := a.library()
	if err != nil {
		return err
	}
	if err := lib.RebuildFTSIndex(); err != nil {
		return errors.New(errmsg.Format(errmsg.OpReindex, err))
	}
	n, err := lib.Count()
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpReindex, err))
	}
	a.out.Success("indexed %d songs", n)
	return nil
}
