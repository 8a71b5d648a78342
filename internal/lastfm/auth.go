package lastfm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"
)

// AuthCallbackPort is the port used for the local authorization callback.
const AuthCallbackPort = 9847

// ErrAuthTimeout is returned when the browser never calls back.
var ErrAuthTimeout = errors.New("authorization timed out")

const authPage = `<!DOCTYPE html>
<html>
<head><title>Tides - Last.fm</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>%s</h1>
<p>%s</p>
</body>
</html>`

// AuthServer receives the token Last.fm appends to the callback URL.
type AuthServer struct {
	server    *http.Server
	listener  net.Listener
	tokenChan chan string
	done      chan struct{}
}

// StartAuthServer listens on addr, or localhost:AuthCallbackPort when empty.
func StartAuthServer(addr string) (*AuthServer, error) {
	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", AuthCallbackPort)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	as := &AuthServer{
		listener:  listener,
		tokenChan: make(chan string, 1),
		done:      make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", as.handleCallback)
	as.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		_ = as.server.Serve(listener)
		close(as.done)
	}()
	return as, nil
}

func (as *AuthServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	w.Header().Set("Content-Type", "text/html")
	if token == "" {
		fmt.Fprintf(w, authPage, "Authorization Failed", "No token received. Please try again.")
		return
	}
	fmt.Fprintf(w, authPage, "Authorization Successful", "You can close this window and return to Tides.")
	select {
	case as.tokenChan <- token:
	default:
	}
}

// CallbackURL is the URL to pass to Client.GetAuthURL.
func (as *AuthServer) CallbackURL() string {
	return "http://" + as.listener.Addr().String() + "/callback"
}

// WaitForToken blocks until the callback delivers a token, ctx ends or
// timeout elapses.
func (as *AuthServer) WaitForToken(ctx context.Context, timeout time.Duration) (string, error) {
	return waitForToken(ctx, as.tokenChan, timeout)
}

func waitForToken(ctx context.Context, tokens <-chan string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case token := <-tokens:
		return token, nil
	case <-timer.C:
		return "", ErrAuthTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Shutdown stops the auth server.
func (as *AuthServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = as.server.Shutdown(ctx)
	<-as.done
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
