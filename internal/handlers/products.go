package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"storefront/internal/catalog"
	"storefront/internal/uploads"
)

const (
	imagesField     = "images"
	maxCreateImages = 5
	maxEditImages   = 10
	maxFormBody     = 10 << 20
)

// Form fields of the create form that map to columns. Everything else is
// kept as a product attribute.
var productColumns = map[string]bool{
	"name":        true,
	"department":  true,
	"category":    true,
	"subcategory": true,
	"brand":       true,
	"actualPrice": true,
	"discount":    true,
	"finalPrice":  true,
	"stock":       true,
	"description": true,
}

type ProductsHandler struct {
	store   *catalog.Store
	uploads *uploads.Dir
	log     logrus.FieldLogger
}

func NewProductsHandler(store *catalog.Store, dir *uploads.Dir, log logrus.FieldLogger) *ProductsHandler {
	return &ProductsHandler{store: store, uploads: dir, log: log.WithField("handler", "products")}
}

// Create handles POST /api/upload-product (multipart, up to 5 images).
func (h *ProductsHandler) Create(c *gin.Context) {
	values, files, err := readForm(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	if len(files) > maxCreateImages {
		errorJSON(c, http.StatusBadRequest, "Too many files, at most 5 images allowed")
		return
	}

	saved, ok := h.saveUploads(c, files)
	if !ok {
		return
	}

	in := catalog.CreateInput{
		Name:        catalog.OptionalString(values.Get("name")),
		Department:  catalog.OptionalString(values.Get("department")),
		Category:    catalog.OptionalString(values.Get("category")),
		Subcategory: catalog.OptionalString(values.Get("subcategory")),
		Brand:       catalog.OptionalString(values.Get("brand")),
		ActualPrice: catalog.OptionalDecimal(values.Get("actualPrice")),
		Discount:    catalog.OptionalInt(values.Get("discount")),
		FinalPrice:  catalog.OptionalDecimal(values.Get("finalPrice")),
		Stock:       catalog.OptionalInt(values.Get("stock")),
		Description: catalog.OptionalString(values.Get("description")),
		Attributes:  map[string]string{},
	}
	for key, vals := range values {
		if productColumns[key] || len(vals) == 0 {
			continue
		}
		in.Attributes[key] = vals[0]
	}

	id, err := h.store.Create(c.Request.Context(), in, saved)
	if err != nil {
		h.discard(saved)
		serverError(c, h.log, err, "Server error during upload")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product uploaded successfully!", "id": id})
}

// List handles GET /api/products.
func (h *ProductsHandler) List(c *gin.Context) {
	items, err := h.store.List(c.Request.Context())
	if err != nil {
		serverError(c, h.log, err, "Failed to fetch products")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get handles GET /api/products/:id.
func (h *ProductsHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	p, err := h.store.Get(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to fetch product")
		return
	}
	c.JSON(http.StatusOK, p)
}

// Related handles GET /api/products/related?name=.
func (h *ProductsHandler) Related(c *gin.Context) {
	items, err := h.store.Related(c.Request.Context(), c.Query("name"))
	if err != nil {
		serverError(c, h.log, err, "Failed to fetch related products")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Update handles PUT /api/products/edit/:id (multipart, up to 10 new
// images, removedImages as JSON array or comma list).
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Invalid product id")
		return
	}
	values, files, err := readForm(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	if len(files) > maxEditImages {
		errorJSON(c, http.StatusBadRequest, "Too many files, at most 10 images allowed")
		return
	}

	attrs, ok := catalog.ParseAttributes(values.Get("attributes"))
	if !ok {
		h.log.WithField("product_id", id).Warn("attributes are not a JSON object, storing {}")
	}
	in := catalog.UpdateInput{
		Name:        catalog.OptionalString(values.Get("name")),
		Category:    catalog.OptionalString(values.Get("category")),
		Brand:       catalog.OptionalString(values.Get("brand")),
		ActualPrice: catalog.DecimalOrZero(values.Get("actualPrice")),
		Discount:    catalog.IntOrZero(values.Get("discount")),
		FinalPrice:  catalog.DecimalOrZero(values.Get("finalPrice")),
		Stock:       catalog.IntOrZero(values.Get("stock")),
		Description: catalog.OptionalString(values.Get("description")),
		Attributes:  attrs,
	}
	removed := catalog.ParseRemovedRefs(values["removedImages"]...)

	saved, ok := h.saveUploads(c, files)
	if !ok {
		return
	}

	images, _, err := h.store.Update(c.Request.Context(), id, in, removed, saved)
	if err != nil {
		h.discard(saved)
		if errors.Is(err, catalog.ErrNotFound) {
			errorJSON(c, http.StatusNotFound, "Product not found")
			return
		}
		serverError(c, h.log, err, "Server Error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully!", "images": images})
}

// RemoveImage handles DELETE /api/products/image/:id. The filename comes
// from the body or the query string.
func (h *ProductsHandler) RemoveImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	values, _, err := readForm(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	filename := values.Get("filename")
	if filename == "" {
		filename = c.Query("filename")
	}

	images, _, err := h.store.RemoveImage(c.Request.Context(), id, filename)
	switch {
	case errors.Is(err, catalog.ErrFilenameRequired):
		errorJSON(c, http.StatusBadRequest, "filename required")
	case errors.Is(err, catalog.ErrNotFound):
		errorJSON(c, http.StatusNotFound, "Product not found")
	case err != nil:
		serverError(c, h.log, err, "Failed to delete image")
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Image removed", "images": images})
	}
}

// Delete handles DELETE /api/products/delete/:id.
func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		errorJSON(c, http.StatusBadRequest, "Invalid product id")
		return
	}

	_, err := h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		serverError(c, h.log, err, "Server Error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully!"})
}

func (h *ProductsHandler) saveUploads(c *gin.Context, files []*multipart.FileHeader) ([]string, bool) {
	saved, err := h.uploads.SaveAll(files)
	if errors.Is(err, uploads.ErrUnsupportedFormat) {
		errorJSON(c, http.StatusBadRequest, "Only jpg, jpeg, png, webp and gif images are allowed")
		return nil, false
	}
	if err != nil {
		serverError(c, h.log, err, "Failed to store uploaded images")
		return nil, false
	}
	return saved, true
}

// discard removes files stored for a request that then failed.
func (h *ProductsHandler) discard(saved []string) {
	if len(saved) == 0 {
		return
	}
	h.uploads.RemoveAll(saved).Log(h.log)
}

// readForm returns the text fields and the image files of a multipart,
// urlencoded or JSON body. The body is read for every method, DELETE
// included. JSON strings become plain values; numbers, booleans, arrays and
// objects keep their JSON text.
func readForm(c *gin.Context) (url.Values, []*multipart.FileHeader, error) {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return url.Values{}, nil, nil
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBody)
	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		return url.Values(form.Value), form.File[imagesField], nil
	case binding.MIMEJSON:
		values, err := jsonValues(body)
		return values, nil, err
	case binding.MIMEPOSTForm, "":
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, nil, err
		}
		values, err := url.ParseQuery(string(raw))
		return values, nil, err
	default:
		return nil, nil, fmt.Errorf("unsupported content type %q", c.ContentType())
	}
}

func jsonValues(r io.Reader) (url.Values, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}

	values := url.Values{}
	for key, raw := range fields {
		text := strings.TrimSpace(string(raw))
		switch {
		case text == "null":
			continue
		case strings.HasPrefix(text, `"`):
			var str string
			if err := json.Unmarshal(raw, &str); err != nil {
				return nil, fmt.Errorf("decode json field %s: %w", key, err)
			}
			values.Set(key, str)
		default:
			values.Set(key, text)
		}
	}
	return values, nil
}
