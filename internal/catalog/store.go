package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"storefront/internal/models"
	"storefront/internal/uploads"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrFilenameRequired = errors.New("filename required")
)

const relatedLimit = 6

// Blobs is the part of the upload directory the store deletes through.
type Blobs interface {
	Remove(ref string) uploads.Result
	RemoveAll(refs []string) uploads.Report
}

// Store keeps a product's images column and the files in the upload
// directory in step. File deletions are best effort and always happen
// before the row is written; they are never rolled back.
type Store struct {
	db    *gorm.DB
	blobs Blobs
	log   logrus.FieldLogger
}

func NewStore(db *gorm.DB, blobs Blobs, log logrus.FieldLogger) *Store {
	return &Store{
		db:    db,
		blobs: blobs,
		log:   log.WithField("component", "catalog"),
	}
}

// Create inserts a product whose images are the already stored uploads.
func (s *Store) Create(ctx context.Context, in CreateInput, images []string) (uint, error) {
	attrs := datatypes.JSONMap{}
	for k, v := range in.Attributes {
		attrs[k] = v
	}

	product := models.Product{
		Name:         in.Name,
		Department:   in.Department,
		Category:     in.Category,
		Subcategory:  in.Subcategory,
		FullCategory: FullCategory(in.Department, in.Category, in.Subcategory),
		Brand:        in.Brand,
		ActualPrice:  in.ActualPrice,
		Discount:     in.Discount,
		FinalPrice:   in.FinalPrice,
		Stock:        in.Stock,
		Description:  in.Description,
		Attributes:   attrs,
		Images:       append(models.ImageList{}, images...),
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"product_id": product.ID,
		"images":     len(product.Images),
	}).Info("product created")
	return product.ID, nil
}

// List returns every product, newest first.
func (s *Store) List(ctx context.Context) ([]models.Product, error) {
	items := []models.Product{}
	if err := s.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

// Related returns a few products whose name contains the first word of name.
func (s *Store) Related(ctx context.Context, name string) ([]models.Product, error) {
	keyword := ""
	if fields := strings.Fields(name); len(fields) > 0 {
		keyword = fields[0]
	}

	items := []models.Product{}
	err := s.db.WithContext(ctx).
		Where("name LIKE ?", "%"+keyword+"%").
		Limit(relatedLimit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("related products: %w", err)
	}
	return items, nil
}

// Update removes the requested images (files first, then from the list),
// appends the new uploads and writes the fields. It returns the stored
// image list.
func (s *Store) Update(ctx context.Context, id uint, in UpdateInput, removed, uploaded []string) (models.ImageList, uploads.Report, error) {
	current, err := s.loadImages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	report := s.blobs.RemoveAll(removed)
	final := append(models.ImageList(uploads.Filter(current, removed)), uploaded...)

	attrs := datatypes.JSONMap(in.Attributes)
	if attrs == nil {
		attrs = datatypes.JSONMap{}
	}

	err = s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(map[string]any{
		"name":         in.Name,
		"category":     in.Category,
		"brand":        in.Brand,
		"actual_price": in.ActualPrice,
		"discount":     in.Discount,
		"final_price":  in.FinalPrice,
		"stock":        in.Stock,
		"description":  in.Description,
		"attributes":   attrs,
		"images":       final,
	}).Error
	if err != nil {
		return nil, report, fmt.Errorf("update product %d: %w", id, err)
	}

	log := s.log.WithField("product_id", id)
	report.Log(log)
	log.WithFields(logrus.Fields{
		"removed":  report.Removed(),
		"uploaded": len(uploaded),
		"images":   len(final),
	}).Info("product updated")
	return final, report, nil
}

// RemoveImage deletes one image file and drops it from the product.
func (s *Store) RemoveImage(ctx context.Context, id uint, ref string) (models.ImageList, uploads.Report, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil, ErrFilenameRequired
	}
	current, err := s.loadImages(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	report := uploads.Report{s.blobs.Remove(ref)}
	filtered := models.ImageList(uploads.Filter(current, []string{ref}))

	err = s.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("images", filtered).Error
	if err != nil {
		return nil, report, fmt.Errorf("update product %d images: %w", id, err)
	}

	log := s.log.WithField("product_id", id)
	report.Log(log)
	log.WithField("ref", ref).Info("product image removed")
	return filtered, report, nil
}

// Delete removes every image file of the product, then the row. File
// failures are reported and never stop the row deletion.
func (s *Store) Delete(ctx context.Context, id uint) (uploads.Report, error) {
	current, err := s.loadImages(ctx, id)
	if err != nil {
		return nil, err
	}

	report := s.blobs.RemoveAll(current)

	res := s.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return report, fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return report, ErrNotFound
	}

	log := s.log.WithField("product_id", id)
	report.Log(log)
	log.WithField("files_removed", report.Removed()).Info("product deleted")
	return report, nil
}

func (s *Store) loadImages(ctx context.Context, id uint) (models.ImageList, error) {
	var p models.Product
	err := s.db.WithContext(ctx).Select("id", "images").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product %d images: %w", id, err)
	}
	return p.Images, nil
}
