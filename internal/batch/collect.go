package batch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// CollectInputs expande directorios en archivos cuya extensión coincide con
// el formato de origen declarado. Los archivos pasados explícitamente se
// aceptan tal cual. Los paths repetidos se descartan.
func CollectInputs(paths []string, source domain.Format, recursive bool) ([]string, []error) {
	var (
		files []string
		errs  []error
	)
	seen := make(map[string]bool)

	add := func(p string, filter bool) {
		if filter && !source.MatchesExt(filepath.Ext(p)) {
			return
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		files = append(files, abs)
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("cannot access %s: %w", path, err))
			continue
		}

		if !info.IsDir() {
			add(path, false)
			continue
		}

		if recursive {
			// un subdirectorio ilegible se reporta y el recorrido sigue
			err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
				if err != nil {
					errs = append(errs, fmt.Errorf("read dir %s: %w", p, err))
					return nil
				}
				if !d.IsDir() {
					add(p, true)
				}
				return nil
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("walk %s: %w", path, err))
			}
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read dir %s: %w", path, err))
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				add(filepath.Join(path, entry.Name()), true)
			}
		}
	}

	return files, errs
}
