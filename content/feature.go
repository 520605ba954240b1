package content

import (
	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/model"
)

// Feature is a per-instance view into a Content. Features are created
// lazily by GetFeature and remain valid for the lifetime of the content.
type Feature struct {
	content *Content
	batchID int
}

// BatchID returns the feature's batch ID, which equals its instance index.
func (f *Feature) BatchID() int { return f.batchID }

// Property looks up a batch table property value for this feature. The
// second return value reports whether the property exists.
func (f *Feature) Property(name string) (any, bool) {
	f.content.mu.Lock()
	t := f.content.tile
	f.content.mu.Unlock()

	if t == nil || t.Batch == nil {
		return nil, false
	}

	return t.Batch.Property(name, f.batchID)
}

// PropertyNames returns the sorted names of the batch table properties
// available on this feature.
func (f *Feature) PropertyNames() []string {
	f.content.mu.Lock()
	t := f.content.tile
	f.content.mu.Unlock()

	if t == nil || t.Batch == nil {
		return nil
	}

	return t.Batch.PropertyNames()
}

// Color returns the feature's current tint.
func (f *Feature) Color() (model.Color, error) {
	f.content.mu.Lock()
	batch := f.content.batch
	f.content.mu.Unlock()

	if batch == nil {
		return model.Color{}, errs.ErrIndexOutOfRange
	}

	return batch.Color(f.batchID)
}

// SetColor changes the feature's tint used by subsequent draw commands.
func (f *Feature) SetColor(color model.Color) error {
	f.content.mu.Lock()
	batch := f.content.batch
	f.content.mu.Unlock()

	if batch == nil {
		return errs.ErrIndexOutOfRange
	}

	return batch.SetColor(f.batchID, color)
}
