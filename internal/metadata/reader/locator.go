package reader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"gowinrt/internal/metadata"
)

const winMdExtension = ".winmd"

// NewLocator opens every WinMD file under the given paths and indexes their type names.
// A path may be a single file or a directory, which is walked recursively. Files are
// added in lexical order so the first definition of a name is stable.
func NewLocator(paths ...string) (*metadata.ScopeIndex, error) {
	files, err := FindMetadataFiles(paths...)
	if err != nil {
		return nil, err
	}

	index := metadata.NewScopeIndex()
	for _, file := range files {
		store, err := Open(file)
		if err != nil {
			index.Close()
			return nil, err
		}
		if err := index.Add(metadata.NewScope(store)); err != nil {
			store.Close()
			index.Close()
			return nil, err
		}
	}

	Logger().Info("metadata files indexed", zap.Int("files", len(files)))
	return index, nil
}

// FindMetadataFiles lists the .winmd files found under the given paths
func FindMetadataFiles(paths ...string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading metadata path: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		err = filepath.WalkDir(path, func(file string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(file), winMdExtension) {
				files = append(files, file)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking metadata directory %s: %w", path, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
