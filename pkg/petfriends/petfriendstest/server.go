// Package petfriendstest provides an in-memory stand-in for the PetFriends API
// for use in tests. Like the real service it performs no validation of pet
// fields by default, so every input is stored and echoed verbatim.
package petfriendstest

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

const forbiddenPage = `<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 3.2 Final//EN">
<title>403 Forbidden</title>
<h1>Forbidden</h1>
<p>This user wasn't found in database</p>
`

// Pet is a stored record.
type Pet struct {
	ID         string
	Owner      string
	Name       string
	AnimalType string
	Age        string
	Photo      string
	CreatedAt  time.Time
}

// Request is a captured inbound call.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  string
	Form   map[string][]string
	Files  map[string]File
}

// File is a captured multipart file part.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Server is a fake PetFriends deployment.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	numericAge bool
	validate   bool
	users      map[string]string
	pets       []*Pet
	nextID     int
	requests   []Request
}

// NewServer starts a fake with a single registered user.
func NewServer(email, password string) *Server {
	s := &Server{users: map[string]string{email: password}}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// SetNumericAge makes responses encode all-digit ages as JSON numbers.
func (s *Server) SetNumericAge(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.numericAge = on
}

// SetValidate makes create and update reject the pet values the real
// service is known to accept: empty names, non-alphabetic animal types and
// ages outside 0..99.
func (s *Server) SetValidate(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validate = on
}

// AddUser registers another login.
func (s *Server) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// KeyFor returns the key the fake issues for email.
func KeyFor(email string) string {
	return "key-" + base64.RawURLEncoding.EncodeToString([]byte(email))
}

// Seed stores a pet owned by email and returns its id.
func (s *Server) Seed(email, name, animalType, age string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(email, name, animalType, age, "").ID
}

// Pets returns a snapshot of every stored pet.
func (s *Server) Pets() []Pet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pet, 0, len(s.pets))
	for _, p := range s.pets {
		out = append(out, *p)
	}
	return out
}

// Requests returns every captured request in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent captured request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	captured, err := capture(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, captured)

	path := strings.TrimPrefix(r.URL.Path, "/api/")
	if path == "key" && r.Method == http.MethodGet {
		s.handleKey(w, r)
		return
	}

	owner, ok := s.ownerLocked(r.Header.Get("auth_key"))
	if !ok {
		forbidden(w)
		return
	}

	switch {
	case path == "pets" && r.Method == http.MethodGet:
		s.handleList(w, owner, r.URL.Query().Get("filter"))
	case path == "pets" && r.Method == http.MethodPost:
		s.handleCreate(w, owner, captured, true)
	case path == "create_pet_simple" && r.Method == http.MethodPost:
		s.handleCreate(w, owner, captured, false)
	case strings.HasPrefix(path, "pets/set_photo/") && r.Method == http.MethodPost:
		s.handleSetPhoto(w, owner, strings.TrimPrefix(path, "pets/set_photo/"), captured)
	case strings.HasPrefix(path, "pets/") && r.Method == http.MethodPut:
		s.handleUpdate(w, owner, strings.TrimPrefix(path, "pets/"), captured)
	case strings.HasPrefix(path, "pets/") && r.Method == http.MethodDelete:
		s.handleDelete(w, owner, strings.TrimPrefix(path, "pets/"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	email := r.Header.Get("email")
	password := r.Header.Get("password")
	want, ok := s.users[email]
	if !ok || want != password {
		forbidden(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": KeyFor(email)})
}

func (s *Server) handleList(w http.ResponseWriter, owner, filter string) {
	if filter != "" && filter != "my_pets" {
		http.Error(w, "Filter value is incorrect", http.StatusBadRequest)
		return
	}
	pets := make([]map[string]any, 0, len(s.pets))
	for i := len(s.pets) - 1; i >= 0; i-- {
		p := s.pets[i]
		if filter == "my_pets" && p.Owner != owner {
			continue
		}
		pets = append(pets, s.render(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"pets": pets})
}

func (s *Server) handleCreate(w http.ResponseWriter, owner string, req Request, withPhoto bool) {
	photo := ""
	if withPhoto {
		f, ok := req.Files["pet_photo"]
		if !ok {
			http.Error(w, "pet_photo is required", http.StatusBadRequest)
			return
		}
		photo = dataURI(f)
	}
	for _, field := range []string{"name", "animal_type", "age"} {
		if _, ok := req.Form[field]; !ok {
			http.Error(w, field+" is required", http.StatusBadRequest)
			return
		}
	}
	name, animalType, age := first(req.Form["name"]), first(req.Form["animal_type"]), first(req.Form["age"])
	if msg := s.invalidLocked(name, animalType, age); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	p := s.insertLocked(owner, name, animalType, age, photo)
	writeJSON(w, http.StatusOK, s.render(p))
}

func (s *Server) handleUpdate(w http.ResponseWriter, owner, id string, req Request) {
	p := s.findLocked(id)
	if p == nil || p.Owner != owner {
		http.Error(w, "Pet with this id wasn't found!", http.StatusBadRequest)
		return
	}
	name, animalType, age := p.Name, p.AnimalType, p.Age
	if v, ok := req.Form["name"]; ok {
		name = first(v)
	}
	if v, ok := req.Form["animal_type"]; ok {
		animalType = first(v)
	}
	if v, ok := req.Form["age"]; ok {
		age = first(v)
	}
	if msg := s.invalidLocked(name, animalType, age); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	p.Name, p.AnimalType, p.Age = name, animalType, age
	writeJSON(w, http.StatusOK, s.render(p))
}

func (s *Server) handleSetPhoto(w http.ResponseWriter, owner, id string, req Request) {
	p := s.findLocked(id)
	if p == nil || p.Owner != owner {
		http.Error(w, "Pet with this id wasn't found!", http.StatusBadRequest)
		return
	}
	f, ok := req.Files["pet_photo"]
	if !ok {
		http.Error(w, "pet_photo is required", http.StatusBadRequest)
		return
	}
	p.Photo = dataURI(f)
	writeJSON(w, http.StatusOK, s.render(p))
}

func (s *Server) handleDelete(w http.ResponseWriter, owner, id string) {
	for i, p := range s.pets {
		if p.ID == id && p.Owner == owner {
			s.pets = append(s.pets[:i], s.pets[i+1:]...)
			break
		}
	}
	// The real service answers 200 with an empty body whether or not the id existed.
	w.WriteHeader(http.StatusOK)
}

func (s *Server) invalidLocked(name, animalType, age string) string {
	if !s.validate {
		return ""
	}
	switch {
	case strings.TrimSpace(name) == "":
		return "name must not be empty"
	case !isLetters(animalType):
		return "animal_type must contain letters only"
	case !isDigits(age) || len(age) > 2:
		return "age must be a number between 0 and 99"
	}
	return ""
}

func (s *Server) ownerLocked(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for email := range s.users {
		if KeyFor(email) == key {
			return email, true
		}
	}
	return "", false
}

func (s *Server) insertLocked(owner, name, animalType, age, photo string) *Pet {
	s.nextID++
	p := &Pet{
		ID:         fmt.Sprintf("pet-%04d", s.nextID),
		Owner:      owner,
		Name:       name,
		AnimalType: animalType,
		Age:        age,
		Photo:      photo,
		CreatedAt:  time.Now().UTC(),
	}
	s.pets = append(s.pets, p)
	return p
}

func (s *Server) findLocked(id string) *Pet {
	for _, p := range s.pets {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) render(p *Pet) map[string]any {
	var age any = p.Age
	if s.numericAge && isDigits(p.Age) {
		age = json.Number(p.Age)
	}
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"animal_type": p.AnimalType,
		"age":         age,
		"pet_photo":   p.Photo,
		"user_id":     KeyFor(p.Owner),
		"created_at":  strconv.FormatFloat(float64(p.CreatedAt.UnixNano())/1e9, 'f', 6, 64),
	}
}

func capture(r *http.Request) (Request, error) {
	req := Request{
		Method: r.Method,
		Path:   r.URL.EscapedPath(),
		Header: r.Header.Clone(),
		Query:  r.URL.RawQuery,
		Form:   map[string][]string{},
		Files:  map[string]File{},
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			return req, fmt.Errorf("parse multipart: %w", err)
		}
		for k, v := range r.MultipartForm.Value {
			req.Form[k] = v
		}
		for field, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			fh := headers[0]
			f, err := fh.Open()
			if err != nil {
				return req, fmt.Errorf("open part %s: %w", field, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return req, fmt.Errorf("read part %s: %w", field, err)
			}
			req.Files[field] = File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("parse form: %w", err)
		}
		for k, v := range r.PostForm {
			req.Form[k] = v
		}
	}
	return req, nil
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = io.WriteString(w, forbiddenPage)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func dataURI(f File) string {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Data)
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != ' ' && r != '-' {
			return false
		}
	}
	return true
}

// SortedFormKeys is a debugging helper for assertions on captured forms.
func (r Request) SortedFormKeys() []string {
	keys := make([]string, 0, len(r.Form))
	for k := range r.Form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
