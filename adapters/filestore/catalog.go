// Package filestore keeps the dataset catalog as JSON sidecar files next to
// the uploaded data. It is used when no database is configured.
package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/ports"
)

const metaSuffix = ".meta.json"

// Catalog is a DatasetRepository over a single directory. Files dropped into
// the directory without a sidecar are addressable by their file name.
type Catalog struct {
	dir string
	mu  sync.RWMutex
}

// NewCatalog creates the directory if needed and returns a catalog over it.
func NewCatalog(dir string) (*Catalog, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Catalog{dir: dir}, nil
}

var (
	_ ports.DatasetRepository = (*Catalog)(nil)
	_ ports.FileStore         = (*Catalog)(nil)
)

// Dir returns the catalog root.
func (c *Catalog) Dir() string { return c.dir }

// Store copies src into the catalog directory under a generated name. The
// returned record is not persisted until Create is called.
func (c *Catalog) Store(ctx context.Context, ownerID, originalFilename string, src io.Reader) (*dataset.Dataset, error) {
	ds, err := dataset.New(ownerID, filepath.Base(originalFilename), "", 0)
	if err != nil {
		return nil, err
	}
	name := ds.ID.String() + "." + string(ds.FileType)
	path := filepath.Join(c.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset file: %w", err)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return nil, fmt.Errorf("failed to write dataset file: %w", copyErr)
	}

	ds.FilePath = path
	ds.FileSize = n
	return ds, nil
}

// Create writes the sidecar for ds.
func (c *Catalog) Create(ctx context.Context, ds *dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.WriteFile(c.metaPath(ds.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID reads the sidecar for id, or describes a bare file named id.
func (c *Catalog) GetByID(ctx context.Context, id core.ID) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	ds, err := c.readMeta(c.metaPath(id))
	if err == nil {
		return ds, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	info, err := os.Stat(filepath.Join(c.dir, id.String()))
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
	}
	return c.bareDataset(id.String(), info)
}

// List returns sidecar records and bare files, newest first.
func (c *Catalog) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	recorded := make(map[string]bool)
	var out []*dataset.Dataset
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), metaSuffix) {
			continue
		}
		ds, err := c.readMeta(filepath.Join(c.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		recorded[filepath.Base(ds.FilePath)] = true
		out = append(out, ds)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasSuffix(name, metaSuffix) || recorded[name] {
			continue
		}
		if _, err := dataset.FileTypeFromName(name); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		ds, err := c.bareDataset(name, info)
		if err != nil {
			continue
		}
		out = append(out, ds)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), nil
}

// Delete removes the sidecar and the data file it points at.
func (c *Catalog) Delete(ctx context.Context, id core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ds, err := c.readMeta(c.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", core.ErrDatasetNotFound, id)
		}
		return err
	}
	if err := os.Remove(c.metaPath(id)); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if c.owns(ds.FilePath) {
		os.Remove(ds.FilePath)
	}
	return nil
}

// Remove deletes a stored data file. Paths outside the catalog directory
// are left alone.
func (c *Catalog) Remove(path string) error {
	if !c.owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove dataset file: %w", err)
	}
	return nil
}

func (c *Catalog) owns(path string) bool {
	return path != "" && filepath.Dir(filepath.Clean(path)) == c.dir
}

func (c *Catalog) metaPath(id core.ID) string {
	return filepath.Join(c.dir, id.String()+metaSuffix)
}

func (c *Catalog) readMeta(path string) (*dataset.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds dataset.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to read dataset metadata %s: %w", filepath.Base(path), err)
	}
	return &ds, nil
}

func (c *Catalog) bareDataset(name string, info os.FileInfo) (*dataset.Dataset, error) {
	ft, err := dataset.FileTypeFromName(name)
	if err != nil {
		return nil, err
	}
	return &dataset.Dataset{
		ID:               core.ID(name),
		OriginalFilename: name,
		FilePath:         filepath.Join(c.dir, name),
		FileType:         ft,
		FileSize:         info.Size(),
		CreatedAt:        info.ModTime().UTC(),
	}, nil
}

func page(all []*dataset.Dataset, limit, offset int) []*dataset.Dataset {
	if offset >= len(all) {
		return []*dataset.Dataset{}
	}
	if offset > 0 {
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
