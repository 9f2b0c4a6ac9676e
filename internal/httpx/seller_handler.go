package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ariefcatur/lexi-storefront/internal/activity"
	"github.com/ariefcatur/lexi-storefront/internal/shop"
	"github.com/go-chi/chi/v5"
)

const maxUpload = 10 << 20

func (s *Storefront) sellerRoutes(r chi.Router) {
	r.Get("/seller/products", s.sellerProducts)
	r.Post("/seller/products", s.createProduct)
	r.Get("/seller/products/{id}", s.editProduct)
	r.Patch("/seller/products/{id}", s.updateProduct)
	r.Delete("/seller/products/{id}", s.deleteProduct)
	r.Get("/seller/orders", s.sellerOrders)
	r.Get("/seller/feedback", s.feedbackOverview)
}

func (s *Storefront) sellerProducts(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).SellerProducts(r.Context(), capabilityFrom(r.Context()).SellerID, r.URL.Query().Get("search"))
	s.respond(w, r, http.StatusOK, v, err)
}

// productForm reads a multipart product form. The image part is optional
// here; validation decides whether it is required. done releases the upload.
func productForm(r *http.Request) (f shop.ProductForm, done func(), err error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return f, nil, err
	}
	done = func() { _ = r.MultipartForm.RemoveAll() }
	f = shop.ProductForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       strings.TrimSpace(r.FormValue("price")),
		StockCount:  strings.TrimSpace(r.FormValue("stockCount")),
	}
	file, hdr, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return f, done, nil
	case err != nil:
		done()
		return f, nil, err
	}
	f.Image = &shop.Image{Filename: hdr.Filename, Body: file}
	return f, func() { _ = file.Close(); done() }, nil
}

func (s *Storefront) createProduct(w http.ResponseWriter, r *http.Request) {
	form, done, err := productForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid product form")
		return
	}
	defer done()

	p, err := s.views(r).CreateProduct(r.Context(), form)
	if err == nil {
		s.publish(r, activity.EventProductChanged, activity.ProductChangedPayload{Action: "create", ProductID: p.ID})
	}
	s.respond(w, r, http.StatusCreated, p, err)
}

func (s *Storefront) editProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	v, err := s.views(r).EditProduct(r.Context(), id)
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	form, done, err := productForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid product form")
		return
	}
	defer done()

	v, err := s.views(r).UpdateProduct(r.Context(), id, form)
	if err == nil {
		s.publish(r, activity.EventProductChanged, activity.ProductChangedPayload{Action: "update", ProductID: id})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}
	c := capabilityFrom(r.Context())
	v, err := s.views(r).DeleteProduct(r.Context(), c.SellerID, r.URL.Query().Get("search"), id)
	if err == nil {
		s.publish(r, activity.EventProductChanged, activity.ProductChangedPayload{Action: "delete", ProductID: id})
	}
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) sellerOrders(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).SellerOrders(r.Context())
	s.respond(w, r, http.StatusOK, v, err)
}

func (s *Storefront) feedbackOverview(w http.ResponseWriter, r *http.Request) {
	v, err := s.views(r).FeedbackOverview(r.Context(), capabilityFrom(r.Context()).SellerID)
	s.respond(w, r, http.StatusOK, v, err)
}
