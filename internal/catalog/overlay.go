// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/shipm/shipm/internal/issue"

	"github.com/pelletier/go-toml/v2"
)

// ParseOverlay decodes a TOML overlay document. Each top-level table is
// one package entry:
//
//	[mytool]
//	repo = "me/mytool"
//	[mytool.deps]
//	debian = ["libfoo1"]
//	[mytool.assets]
//	debian = ".deb"
func ParseOverlay(data []byte) (Document, error) {
	var doc Document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing package overlay: %w", err)
	}
	return doc, nil
}

// applyOverlay merges the user overlay into the base document. Overlay
// entries replace base entries wholesale; there is no per-field merge, so
// an overlay entry must be complete on its own. A missing overlay file is
// the normal case; a present-but-broken one is the user's to fix and
// fails the load.
func (x *Index) applyOverlay(doc Document) (Document, error) {
	path := x.OverlayPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, issue.NewErrorContext().
			WithOperation("load package overlay").
			WithResource(path).
			WithSuggestion("Check that the file is readable").
			Wrap(err).
			BuildError()
	}

	overlay, err := ParseOverlay(data)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load package overlay").
			WithResource(path).
			WithSuggestion("Check the TOML syntax").
			WithSuggestion("Each package is a table with repo, deps, and assets keys").
			WithSuggestion("Remove the file to fall back to the shipped index").
			Wrap(err).
			BuildError()
	}

	merged := make(Document, len(doc)+len(overlay))
	for name, entry := range doc {
		merged[name] = entry
	}
	for name, entry := range overlay {
		merged[name] = entry
	}
	return merged, nil
}
