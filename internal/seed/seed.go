// Package seed loads the bundled clinic directory, milestones and guidance
// into the store.
package seed

import (
	"context"
	"embed"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/logger"
)

//go:embed data/*.yaml
var files embed.FS

// Data is the full seed set.
type Data struct {
	Clinics    []models.Clinic
	Milestones []models.PregnancyMilestone
	Guidance   []models.GuidanceEntry
}

// Summary reports how many documents Seed inserted per collection.
type Summary struct {
	Clinics    int
	Milestones int
	Guidance   int
}

func decode(name string, out interface{}) error {
	b, err := files.ReadFile("data/" + name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}
	return nil
}

// Load parses the embedded seed files.
func Load() (*Data, error) {
	d := &Data{}
	if err := decode("clinics.yaml", &d.Clinics); err != nil {
		return nil, err
	}
	if err := decode("milestones.yaml", &d.Milestones); err != nil {
		return nil, err
	}
	if err := decode("guidance.yaml", &d.Guidance); err != nil {
		return nil, err
	}
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Seed replaces the clinics, milestones and guidance collections with d.
// User data is never touched.
func Seed(ctx context.Context, db store.Database, d *Data, now time.Time) (Summary, error) {
	var sum Summary
	now = now.UTC()

	clinics := make(map[string]interface{}, len(d.Clinics))
	for i := range d.Clinics {
		c := d.Clinics[i]
		c.ID = store.NewID()
		c.Services = nonNil(c.Services)
		c.CreatedAt, c.UpdatedAt = now, now
		clinics[c.ID] = &c
	}
	milestones := make(map[string]interface{}, len(d.Milestones))
	for i := range d.Milestones {
		m := d.Milestones[i]
		m.ID = store.NewID()
		m.Tips = nonNil(m.Tips)
		milestones[m.ID] = &m
	}
	guidance := make(map[string]interface{}, len(d.Guidance))
	for i := range d.Guidance {
		g := d.Guidance[i]
		g.ID = store.NewID()
		g.Tags = nonNil(g.Tags)
		g.Media = nonNil(g.Media)
		guidance[g.ID] = &g
	}

	for _, step := range []struct {
		name string
		docs map[string]interface{}
		n    *int
	}{
		{store.Clinics, clinics, &sum.Clinics},
		{store.Milestones, milestones, &sum.Milestones},
		{store.Guidance, guidance, &sum.Guidance},
	} {
		col := db.Collection(step.name)
		if _, err := col.DeleteMany(ctx, store.Filter{}); err != nil {
			return sum, errors.Wrapf(err, "clear %s", step.name)
		}
		if len(step.docs) > 0 {
			if err := col.InsertMany(ctx, step.docs); err != nil {
				return sum, errors.Wrapf(err, "insert %s", step.name)
			}
		}
		*step.n = len(step.docs)
		logger.Infof("seed: %s <- %d documents", step.name, len(step.docs))
	}
	return sum, nil
}
