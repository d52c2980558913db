package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/pkg/logger"
)

func apiTestLogger() *logger.Logger {
	return logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[api-test] "),
		logger.WithFlags(0),
	)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

var _ = Describe("Client", func() {
	var (
		mux    *http.ServeMux
		server *httptest.Server
		client *api.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)

		var err error
		client, err = api.NewClient(server.URL, 5*time.Second, apiTestLogger())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("CheckAuth", func() {
		It("reports an unauthenticated session", func() {
			mux.HandleFunc("/check-auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
			})

			session, err := client.CheckAuth(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Authenticated).To(BeFalse())
			Expect(session.User).To(BeNil())
		})

		It("reports an authenticated session with the user", func() {
			mux.HandleFunc("/check-auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"authenticated": true,
					"user": map[string]string{
						"name":  "Ada Lovelace",
						"email": "ada@example.com",
					},
				})
			})

			session, err := client.CheckAuth(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Authenticated).To(BeTrue())
			Expect(session.User).NotTo(BeNil())
			Expect(session.User.Email).To(Equal("ada@example.com"))
		})
	})

	Describe("Login", func() {
		It("posts the credential and returns the user", func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))

				var body struct {
					Credential string `json:"credential"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
				Expect(body.Credential).To(Equal("id-token-123"))

				http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status": "success",
					"user":   map[string]string{"name": "Ada Lovelace", "email": "ada@example.com"},
				})
			})

			user, err := client.Login(ctx, "id-token-123")
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("Ada Lovelace"))
		})

		It("surfaces the server's rejection message verbatim", func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"status":  "error",
					"message": "Invalid token",
				})
			})

			_, err := client.Login(ctx, "bad-token")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Invalid token"))
			Expect(errors.Is(err, api.ErrNotAuthenticated)).To(BeTrue())
		})
	})

	Describe("session cookies", func() {
		It("carries the login cookie on subsequent requests", func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status": "success",
					"user":   map[string]string{"email": "ada@example.com"},
				})
			})
			mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
				cookie, err := r.Cookie("session")
				if err != nil || cookie.Value != "abc" {
					writeJSON(w, http.StatusUnauthorized, map[string]string{
						"status": "error", "message": "Not authenticated",
					})
					return
				}
				writeJSON(w, http.StatusOK, map[string]interface{}{"files": []interface{}{}})
			})

			_, err := client.ListFiles(ctx)
			Expect(errors.Is(err, api.ErrNotAuthenticated)).To(BeTrue())

			_, err = client.Login(ctx, "id-token-123")
			Expect(err).NotTo(HaveOccurred())

			_, err = client.ListFiles(ctx)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ListFiles", func() {
		It("decodes the document list", func() {
			mux.HandleFunc("/files", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"files": []map[string]interface{}{
						{
							"id":              "65a1",
							"filename":        "notes.pdf",
							"size":            2048,
							"flashcard_count": 12,
							"upload_date":     "2025-11-03T10:15:30.123456",
						},
					},
				})
			})

			files, err := client.ListFiles(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(files).To(HaveLen(1))
			Expect(files[0].ID).To(Equal("65a1"))
			Expect(files[0].Filename).To(Equal("notes.pdf"))
			Expect(files[0].Size).To(Equal(int64(2048)))
			Expect(files[0].FlashcardCount).To(Equal(12))
		})
	})

	Describe("Stats", func() {
		It("decodes the totals", func() {
			mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]int{
					"total_files": 3,
					"total_cards": 41,
				})
			})

			stats, err := client.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalFiles).To(Equal(3))
			Expect(stats.TotalCards).To(Equal(41))
		})
	})

	Describe("Upload", func() {
		var tempFile string

		BeforeEach(func() {
			f, err := os.CreateTemp("", "notes-*.txt")
			Expect(err).NotTo(HaveOccurred())
			_, err = f.WriteString("The mitochondrion is the powerhouse of the cell.")
			Expect(err).NotTo(HaveOccurred())
			Expect(f.Close()).To(Succeed())
			tempFile = f.Name()
		})

		AfterEach(func() {
			os.Remove(tempFile)
		})

		It("sends the file as multipart and returns the flashcard count", func() {
			mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodPost))

				file, header, err := r.FormFile("file")
				Expect(err).NotTo(HaveOccurred())
				defer file.Close()

				content, err := io.ReadAll(file)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(content)).To(ContainSubstring("mitochondrion"))

				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status":          "success",
					"filename":        header.Filename,
					"flashcard_count": 12,
				})
			})

			result, err := client.Upload(ctx, tempFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.FlashcardCount).To(Equal(12))
			Expect(result.Filename).To(HaveSuffix(".txt"))
		})

		It("surfaces an upload rejection verbatim", func() {
			mux.HandleFunc("/upload", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"status": "error", "message": "No file provided",
				})
			})

			_, err := client.Upload(ctx, tempFile)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("No file provided"))
		})

		It("fails for a path that does not exist", func() {
			_, err := client.Upload(ctx, "/no/such/file.txt")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Flashcards", func() {
		It("returns the cards and filename", func() {
			mux.HandleFunc("/flashcards/65a1", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status":   "success",
					"filename": "notes.pdf",
					"flashcards": []map[string]string{
						{"question": "What is Go?", "answer": "A programming language"},
					},
				})
			})

			cards, filename, err := client.Flashcards(ctx, "65a1")
			Expect(err).NotTo(HaveOccurred())
			Expect(filename).To(Equal("notes.pdf"))
			Expect(cards).To(HaveLen(1))
			Expect(cards[0].Question).To(Equal("What is Go?"))
		})

		It("surfaces a missing file error", func() {
			mux.HandleFunc("/flashcards/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]string{
					"status": "error", "message": "File not found",
				})
			})

			_, _, err := client.Flashcards(ctx, "gone")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("File not found"))
		})
	})

	Describe("DeleteFile", func() {
		It("issues a DELETE for the document", func() {
			var deleted bool
			mux.HandleFunc("/files/65a1", func(w http.ResponseWriter, r *http.Request) {
				Expect(r.Method).To(Equal(http.MethodDelete))
				deleted = true
				writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			})

			Expect(client.DeleteFile(ctx, "65a1")).To(Succeed())
			Expect(deleted).To(BeTrue())
		})
	})

	Describe("connectivity failures", func() {
		It("wraps unreachable-server errors", func() {
			server.Close()

			_, err := client.CheckAuth(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("could not reach server"))
		})
	})
})

var _ = Describe("Error", func() {
	It("falls back to the status code when the server sent no message", func() {
		err := &api.Error{StatusCode: http.StatusBadGateway}
		Expect(err.Error()).To(Equal(fmt.Sprintf("server returned status %d", http.StatusBadGateway)))
	})

	It("only matches ErrNotAuthenticated for 401 responses", func() {
		Expect(errors.Is(&api.Error{StatusCode: 401}, api.ErrNotAuthenticated)).To(BeTrue())
		Expect(errors.Is(&api.Error{StatusCode: 500}, api.ErrNotAuthenticated)).To(BeFalse())
	})
})
