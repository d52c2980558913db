package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/studymate-app/studymate/internal/api"
	"github.com/studymate-app/studymate/internal/session"
	"github.com/studymate-app/studymate/pkg/logger"
	"github.com/studymate-app/studymate/pkg/models"
)

func sessionTestLogger() *logger.Logger {
	return logger.New(
		logger.WithOutput(GinkgoWriter),
		logger.WithPrefix("[session-test] "),
		logger.WithFlags(0),
	)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

var _ = Describe("Manager", func() {
	var (
		ctx      context.Context
		mux      *http.ServeMux
		server   *httptest.Server
		manager  *session.Manager
		observed []models.Session
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)

		client, err := api.NewClient(server.URL, 5*time.Second, sessionTestLogger())
		Expect(err).NotTo(HaveOccurred())

		manager = session.NewManager(client, sessionTestLogger())
		observed = nil
		manager.OnChange(func(s models.Session) {
			observed = append(observed, s)
		})
	})

	AfterEach(func() {
		server.Close()
	})

	It("is unresolved until the first session check", func() {
		Expect(manager.Resolved()).To(BeFalse())
		Expect(manager.Current().Authenticated).To(BeFalse())
	})

	Describe("CheckSession", func() {
		It("resolves to an unauthenticated session and notifies", func() {
			mux.HandleFunc("/check-auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
			})

			sess, err := manager.CheckSession(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Authenticated).To(BeFalse())
			Expect(manager.Resolved()).To(BeTrue())
			Expect(observed).To(HaveLen(1))
		})

		It("restores an existing session from the cookie check", func() {
			mux.HandleFunc("/check-auth", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"authenticated": true,
					"user":          map[string]string{"name": "Ada Lovelace", "email": "ada@example.com"},
				})
			})

			sess, err := manager.CheckSession(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Authenticated).To(BeTrue())
			Expect(manager.Current().DisplayName()).To(Equal("Ada Lovelace"))
		})

		It("still resolves when the backend is unreachable", func() {
			server.Close()

			_, err := manager.CheckSession(ctx)
			Expect(err).To(HaveOccurred())
			Expect(manager.Resolved()).To(BeTrue())
			Expect(manager.Current().Authenticated).To(BeFalse())
		})
	})

	Describe("Login", func() {
		It("establishes a session and notifies listeners", func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status": "success",
					"user":   map[string]string{"email": "ada@example.com"},
				})
			})

			sess, err := manager.Login(ctx, "id-token-123")
			Expect(err).NotTo(HaveOccurred())
			Expect(sess.Authenticated).To(BeTrue())
			Expect(manager.Resolved()).To(BeTrue())
			Expect(observed).To(HaveLen(1))
			Expect(observed[0].Authenticated).To(BeTrue())
		})

		It("keeps the previous state on a rejected credential", func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"status": "error", "message": "Invalid token",
				})
			})

			_, err := manager.Login(ctx, "bad-token")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("Invalid token"))
			Expect(manager.Current().Authenticated).To(BeFalse())
			Expect(observed).To(BeEmpty())
		})
	})

	Describe("Logout", func() {
		BeforeEach(func() {
			mux.HandleFunc("/google-login", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{
					"status": "success",
					"user":   map[string]string{"email": "ada@example.com"},
				})
			})
			_, err := manager.Login(ctx, "id-token-123")
			Expect(err).NotTo(HaveOccurred())
		})

		It("clears the session and notifies", func() {
			mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
			})

			Expect(manager.Logout(ctx)).To(Succeed())
			Expect(manager.Current()).To(Equal(models.Session{}))
			Expect(observed[len(observed)-1].Authenticated).To(BeFalse())
		})

		It("clears local state even when the server call fails", func() {
			server.Close()

			err := manager.Logout(ctx)
			Expect(err).To(HaveOccurred())
			Expect(manager.Current()).To(Equal(models.Session{}))
		})
	})
})

var _ = Describe("Session", func() {
	It("prefers the name for display and falls back to the email", func() {
		named := models.Session{Authenticated: true, User: &models.User{Name: "Ada Lovelace", Email: "ada@example.com"}}
		Expect(named.DisplayName()).To(Equal("Ada Lovelace"))

		emailOnly := models.Session{Authenticated: true, User: &models.User{Email: "ada@example.com"}}
		Expect(emailOnly.DisplayName()).To(Equal("ada@example.com"))

		Expect(models.Session{}.DisplayName()).To(BeEmpty())
	})
})
