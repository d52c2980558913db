package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/studymate-app/studymate/pkg/logger"
)

// GoogleSignIn runs the desktop replacement for the web sign-in widget:
// an authorization-code flow against Google with a loopback redirect.
// The ID token it yields is the credential the backend's /google-login
// endpoint verifies.
type GoogleSignIn struct {
	clientID     string
	clientSecret string
	logger       *logger.Logger
	openURL      func(string) error
}

func New(clientID, clientSecret string, log *logger.Logger) *GoogleSignIn {
	return &GoogleSignIn{
		clientID:     clientID,
		clientSecret: clientSecret,
		logger:       log,
		openURL:      openBrowser,
	}
}

// SignIn opens the system browser on Google's consent page and waits for
// the redirect on a loopback listener. It blocks until the flow finishes
// or ctx is cancelled.
func (g *GoogleSignIn) SignIn(ctx context.Context) (string, error) {
	if g.clientID == "" {
		return "", errors.New("google client id is not configured")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to open loopback listener: %w", err)
	}
	defer listener.Close()

	conf := &oauth2.Config{
		ClientID:     g.clientID,
		ClientSecret: g.clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://%s/callback", listener.Addr().String()),
		Scopes:       []string{"openid", "email", "profile"},
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("oauth state mismatch")
			return
		}
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, msg, http.StatusBadRequest)
			errCh <- fmt.Errorf("sign-in was denied: %s", msg)
			return
		}
		fmt.Fprintln(w, "Signed in to StudyMate. You can close this window.")
		codeCh <- r.URL.Query().Get("code")
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)
	defer server.Shutdown(context.Background())

	authURL := conf.AuthCodeURL(state)
	g.logger.Info("Opening browser for Google sign-in")
	g.logger.Debug("Auth URL: %s", authURL)
	if err := g.openURL(authURL); err != nil {
		g.logger.Error("Could not open browser: %v", err)
		g.logger.Info("Visit this URL to sign in: %s", authURL)
	}

	var code string
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case err := <-errCh:
		return "", err
	case code = <-codeCh:
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	idToken, ok := token.Extra("id_token").(string)
	if !ok || idToken == "" {
		return "", errors.New("google response carried no id_token")
	}
	return idToken, nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "windows":
		return exec.Command("cmd", "/c", "start", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
