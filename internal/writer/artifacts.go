package writer

import (
	"os"
	"path/filepath"

	"challan-service/internal/models"
	"challan-service/pkg/errors"
)

// Artifacts holds the rendered upload files of one run
type Artifacts struct {
	PF  []byte
	ESI []byte
}

// Render builds both upload files
func Render(w *ESIWriter, pf []models.ContributionRecord, esi []models.AttendanceRecord) (*Artifacts, error) {
	workbook, err := w.Workbook(esi)
	if err != nil {
		return nil, err
	}
	return &Artifacts{PF: PFText(pf), ESI: workbook}, nil
}

// Save writes both files into dir and returns their paths. Files are staged
// under temporary names and renamed only once both are written; on failure
// nothing is left behind.
func (a *Artifacts) Save(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, dir, err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{PFFileName, a.PF},
		{ESIFileName, a.ESI},
	}

	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}

	for _, file := range files {
		tmp, err := stage(dir, file.name, file.data)
		if err != nil {
			cleanup()
			return nil, errors.FileError(errors.CodeFilePermission, filepath.Join(dir, file.name), err)
		}
		staged = append(staged, tmp)
	}

	paths := make([]string, 0, len(files))
	for i, file := range files {
		path := filepath.Join(dir, file.name)
		if err := os.Rename(staged[i], path); err != nil {
			cleanup()
			for _, written := range paths {
				os.Remove(written)
			}
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func stage(dir, name string, data []byte) (string, error) {
	file, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	if err := os.Chmod(file.Name(), 0o644); err != nil {
		os.Remove(file.Name())
		return "", err
	}
	return file.Name(), nil
}
