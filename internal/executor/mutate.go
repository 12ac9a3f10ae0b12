package executor

import (
	"fmt"
	"path/filepath"

	"github.com/harrison/orang/internal/content"
	"github.com/harrison/orang/internal/filter"
	"github.com/harrison/orang/internal/logger"
	"github.com/harrison/orang/internal/search"
)

// Replacer rewrites content matches inside each matched file.
type Replacer struct {
	Log         logger.Logger
	Engine      *content.Engine
	Filter      *filter.Filter
	Replacement content.Replacement
	DryRun      bool
}

func (rp *Replacer) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	if r.Match.IsDirectory {
		return nil
	}
	res, err := rp.Engine.ReplaceInFile(r.Match.Path, rp.Filter, rp.Replacement, rp.DryRun)
	if err != nil {
		return err
	}
	if !res.Changed {
		return nil
	}
	sc.Telemetry.UpdatedCount++
	rp.Log.Op(logger.TagUpdate, fmt.Sprintf("%s (%d)", r.RelativePath(), res.Count))
	return nil
}

// Renamer applies the replacement to each matched item's name.
type Renamer struct {
	Log         logger.Logger
	Filter      *filter.Filter
	Replacement content.Replacement
	DryRun      bool
}

func (rn *Renamer) Consume(sc *search.Context, r *search.SearchResult, _ search.ColumnWidths) error {
	newPath, ok := content.ProposeRename(rn.Filter, r.Match.Path, r.Match.IsDirectory, rn.Replacement)
	if !ok {
		return nil
	}
	if !rn.DryRun {
		if err := content.Rename(r.Match.Path, newPath); err != nil {
			return err
		}
	}
	sc.Telemetry.RenamedCount++
	rn.Log.Op(logger.TagRename, fmt.Sprintf("%s -> %s", r.RelativePath(), filepath.Base(newPath)))
	return nil
}
