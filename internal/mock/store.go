package mock

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/studiowebux/carcli/internal/types"
)

var (
	errNotFound    = errors.New("not found")
	errBrandInUse  = errors.New("brand is referenced by cars")
	errBadBrand    = errors.New("brand does not exist")
	errMissingName = errors.New("name is required")
)

// upload is an image held in memory
type upload struct {
	contentType string
	data        []byte
}

// store is the in-memory backing data for the mock API
type store struct {
	mu          sync.RWMutex
	brands      map[int64]types.Brand
	cars        map[int64]types.Car
	uploads     map[string]upload
	nextBrandID int64
	nextCarID   int64
	nextImageID int64
}

func newStore(cfg *Config) *store {
	s := &store{
		brands:  make(map[int64]types.Brand),
		cars:    make(map[int64]types.Car),
		uploads: make(map[string]upload),
	}
	for _, b := range cfg.Brands {
		s.brands[b.ID] = b
		if b.ID > s.nextBrandID {
			s.nextBrandID = b.ID
		}
	}
	for _, sc := range cfg.Cars {
		s.nextCarID++
		id := s.nextCarID
		release, _ := types.ParseLocalDateTime(sc.ReleaseDateTime)
		s.cars[id] = types.Car{
			ID:              &id,
			Brand:           s.brands[sc.BrandID],
			Specification:   sc.Specification,
			EngineLiter:     sc.EngineLiter,
			IsNew:           sc.IsNew,
			Price:           sc.Price,
			ReleaseDateTime: release,
		}
	}
	return s
}

// listBrands returns brands ordered by id
func (s *store) listBrands() []types.Brand {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Brand, 0, len(s.brands))
	for _, b := range s.brands {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) createBrand(name string) (types.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Brand{}, errMissingName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBrandID++
	b := types.Brand{ID: s.nextBrandID, Name: name}
	s.brands[b.ID] = b
	return b, nil
}

// updateBrand renames a brand and every car embedding it
func (s *store) updateBrand(id int64, name string) (types.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return types.Brand{}, errMissingName
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.brands[id]
	if !ok {
		return types.Brand{}, errNotFound
	}
	b.Name = name
	s.brands[id] = b
	for cid, c := range s.cars {
		if c.Brand.ID == id {
			c.Brand = b
			s.cars[cid] = c
		}
	}
	return b, nil
}

func (s *store) deleteBrand(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.brands[id]; !ok {
		return errNotFound
	}
	for _, c := range s.cars {
		if c.Brand.ID == id {
			return errBrandInUse
		}
	}
	delete(s.brands, id)
	return nil
}

// listCars returns every car ordered by id
func (s *store) listCars() []types.Car {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Car, 0, len(s.cars))
	for _, c := range s.cars {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IDValue() < out[j].IDValue() })
	return out
}

// draftBrandID picks the brand reference from a draft: brandId, else brand.id
func draftBrandID(d types.CarDraft) int64 {
	if d.BrandID != 0 {
		return d.BrandID
	}
	if d.Brand != nil {
		return d.Brand.ID
	}
	return 0
}

func (s *store) createCar(d types.CarDraft, img *types.Image) (types.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brand, ok := s.brands[draftBrandID(d)]
	if !ok {
		return types.Car{}, errBadBrand
	}

	s.nextCarID++
	id := s.nextCarID
	c := types.Car{ID: &id, Brand: brand, Image: img}
	applyDraft(&c, d)
	s.cars[id] = c
	return c, nil
}

// updateCar applies the non-empty draft fields to an existing car
func (s *store) updateCar(id int64, d types.CarDraft, img *types.Image) (types.Car, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cars[id]
	if !ok {
		return types.Car{}, errNotFound
	}
	if bid := draftBrandID(d); bid != 0 {
		brand, ok := s.brands[bid]
		if !ok {
			return types.Car{}, errBadBrand
		}
		c.Brand = brand
	}
	applyDraft(&c, d)
	if img != nil {
		c.Image = img
	}
	s.cars[id] = c
	return c, nil
}

func applyDraft(c *types.Car, d types.CarDraft) {
	if d.Specification != "" {
		c.Specification = d.Specification
	}
	if d.EngineLiter != nil {
		c.EngineLiter = *d.EngineLiter
	}
	if d.IsNew != nil {
		c.IsNew = *d.IsNew
	}
	if d.Price != nil {
		c.Price = *d.Price
	}
	if d.ReleaseDateTime != nil {
		c.ReleaseDateTime = *d.ReleaseDateTime
	}
}

func (s *store) deleteCar(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cars[id]
	if !ok {
		return errNotFound
	}
	if c.Image != nil {
		delete(s.uploads, c.Image.Filename)
	}
	delete(s.cars, id)
	return nil
}

// saveUpload stores an image under a uuid-prefixed name
func (s *store) saveUpload(filename, contentType string, data []byte) *types.Image {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), path.Base(filename))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextImageID++
	s.uploads[name] = upload{contentType: contentType, data: data}
	return &types.Image{
		ID:       s.nextImageID,
		Filename: name,
		FullPath: "/uploads/" + name,
	}
}

func (s *store) getUpload(name string) (upload, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.uploads[name]
	return u, ok
}
