// Package apitest runs an in-process fake of the marketplace REST API and
// records every call it receives.
package apitest

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

const Prefix = "/api/v1"

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
	SellerID    int64   `json:"seller_id"`
	Status      string  `json:"status"`
}

type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"-"`
}

// Upload describes the file part of a multipart request.
type Upload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Call is one request as seen by the server. Path has Prefix removed.
type Call struct {
	Method string
	Path   string
	Body   []byte
	Form   url.Values
	Upload *Upload
}

type failure struct {
	status int
	body   string
}

type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	products []Product
	users    []User
	nextID   int64
	calls    []Call
	failures map[string][]failure
}

// NewServer starts a server that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	s := &Server{nextID: 1, failures: make(map[string][]failure)}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base URL, prefix included.
func (s *Server) URL() string {
	return s.srv.URL + Prefix
}

func (s *Server) SeedProducts(ps ...Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if p.ID == 0 {
			p.ID = s.nextID
		}
		if p.ID >= s.nextID {
			s.nextID = p.ID + 1
		}
		if p.Status == "" {
			p.Status = "pending"
		}
		s.products = append(s.products, p)
	}
}

func (s *Server) SeedUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

// Products returns a copy of the stored products.
func (s *Server) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.products)
}

// Fail makes the next request matching method and path answer with status
// and body. Failures queue up per route.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.failures[key] = append(s.failures[key], failure{status, body})
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

func (s *Server) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route(Prefix, func(r chi.Router) {
		asJSON := r.With(allowMedia("application/json"))
		asForm := r.With(allowMedia("multipart/form-data"))

		asJSON.Post("/auth/login", s.login)
		asJSON.Post("/auth/signup", s.signup)
		r.Get("/products", s.listProducts)
		asForm.Post("/products", s.createProduct)
		asJSON.Post("/products/bulk/status", s.bulkStatus)
		asJSON.Post("/products/bulk/delete", s.bulkDelete)
		asForm.Patch("/products/{id}/form", s.updateProductForm)
		r.Delete("/products/{id}", s.deleteProduct)
	})
	return r
}

// allowMedia rejects bodies whose media type is not mediaType with 415.
func allowMedia(mediaType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || got != mediaType {
				writeDetail(w, http.StatusUnsupportedMediaType, "invalid media type")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// record stores the call and short-circuits queued failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := Call{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, Prefix),
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			if err := r.ParseMultipartForm(10 << 20); err != nil {
				http.Error(w, "bad multipart body", http.StatusBadRequest)
				return
			}
			call.Form = r.MultipartForm.Value
			if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
				call.Upload = readUpload(fhs[0])
			}
		} else if r.Body != nil {
			call.Body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(call.Body)))
		}

		s.mu.Lock()
		s.calls = append(s.calls, call)
		key := call.Method + " " + call.Path
		var f *failure
		if q := s.failures[key]; len(q) > 0 {
			f = &q[0]
			s.failures[key] = q[1:]
		}
		s.mu.Unlock()

		if f != nil {
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func readUpload(fh *multipart.FileHeader) *Upload {
	u := &Upload{FileName: fh.Filename, ContentType: fh.Header.Get("Content-Type")}
	f, err := fh.Open()
	if err != nil {
		return u
	}
	defer f.Close()
	u.Content, _ = io.ReadAll(f)
	return u
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email && u.Password == req.Password {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeDetail(w, http.StatusBadRequest, "Invalid email or password")
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == req.Email {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := User{
		ID:       int64(len(s.users) + 1),
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	}
	s.users = append(s.users, u)
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.products
	if ps == nil {
		ps = []Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	p := Product{Status: "pending"}
	if !applyForm(w, r, &p) {
		return
	}
	sellerID, err := strconv.ParseInt(r.FormValue("seller_id"), 10, 64)
	if err != nil || p.Name == "" || p.Category == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "missing required fields")
		return
	}
	p.SellerID = sellerID

	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextID
	s.nextID++
	s.products = append(s.products, p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProductForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Product not found")
		return
	}
	p := s.products[i]
	if !applyForm(w, r, &p) {
		return
	}
	s.products[i] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Product not found")
		return
	}
	s.products = slices.Delete(s.products, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []int64 `json:"ids"`
		Status string  `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	switch req.Status {
	case "pending", "approved", "blocked":
	default:
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := []Product{}
	for i := range s.products {
		if slices.Contains(req.IDs, s.products[i].ID) {
			s.products[i].Status = req.Status
			updated = append(updated, s.products[i])
		}
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.products)
	s.products = slices.DeleteFunc(s.products, func(p Product) bool {
		return slices.Contains(req.IDs, p.ID)
	})
	writeJSON(w, http.StatusOK, map[string]int{"deleted": before - len(s.products)})
}

func (s *Server) indexOf(id int64) int {
	return slices.IndexFunc(s.products, func(p Product) bool {
		return p.ID == id
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid id")
		return 0, false
	}
	return id, true
}

// applyForm copies the multipart text fields present in r onto p.
func applyForm(w http.ResponseWriter, r *http.Request, p *Product) bool {
	if r.MultipartForm == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "multipart body required")
		return false
	}
	v := r.MultipartForm.Value
	if s := first(v, "name"); s != nil {
		p.Name = *s
	}
	if s := first(v, "category"); s != nil {
		p.Category = *s
	}
	if s := first(v, "location"); s != nil {
		p.Location = s
	}
	if s := first(v, "description"); s != nil {
		p.Description = s
	}
	if s := first(v, "price"); s != nil {
		f, err := strconv.ParseFloat(*s, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "price must be a number")
			return false
		}
		p.Price = f
	}
	if s := first(v, "quantity"); s != nil {
		n, err := strconv.Atoi(*s)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "quantity must be an integer")
			return false
		}
		p.Quantity = n
	}
	if fhs := r.MultipartForm.File["image"]; len(fhs) > 0 {
		u := "https://cdn.test/" + fhs[0].Filename
		p.ImageURL = &u
	}
	return true
}

func first(v url.Values, key string) *string {
	if vs, ok := v[key]; ok && len(vs) > 0 {
		return &vs[0]
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
