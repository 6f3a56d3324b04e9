package flash

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newRouter(s *Store, popped *[]string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		if err := s.Add(c, "No file part"); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Redirect(http.StatusSeeOther, "/")
	})
	r.GET("/", func(c *gin.Context) {
		*popped = s.Pop(c)
		c.Status(http.StatusOK)
	})
	return r
}

func flashCookie(t *testing.T, resp *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range resp.Result().Cookies() {
		if ck.Name == CookieName {
			return ck
		}
	}
	t.Fatalf("no %s cookie in response", CookieName)
	return nil
}

func TestAddThenPop(t *testing.T) {
	var popped []string
	router := newRouter(New("secret", false), &popped)

	post := httptest.NewRecorder()
	router.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/", nil))
	ck := flashCookie(t, post)
	if !ck.HttpOnly {
		t.Fatal("expected HttpOnly cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	get := httptest.NewRecorder()
	router.ServeHTTP(get, req)

	if len(popped) != 1 || popped[0] != "No file part" {
		t.Fatalf("unexpected messages: %v", popped)
	}
	if cleared := flashCookie(t, get); cleared.MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, MaxAge=%d", cleared.MaxAge)
	}
}

func TestPopWithoutCookie(t *testing.T) {
	popped := []string{"stale"}
	router := newRouter(New("secret", false), &popped)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if popped != nil {
		t.Fatalf("expected no messages, got %v", popped)
	}
}

func TestPopRejectsForeignSignature(t *testing.T) {
	var popped []string
	signer := newRouter(New("other-secret", false), &popped)
	reader := newRouter(New("secret", false), &popped)

	post := httptest.NewRecorder()
	signer.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/", nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(flashCookie(t, post))
	reader.ServeHTTP(httptest.NewRecorder(), req)

	if popped != nil {
		t.Fatalf("expected forged cookie to be ignored, got %v", popped)
	}
}

func TestPopRejectsExpired(t *testing.T) {
	var popped []string
	store := New("secret", false)
	router := newRouter(store, &popped)

	post := httptest.NewRecorder()
	router.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/", nil))

	store.now = func() time.Time { return time.Now().Add(time.Hour) }
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(flashCookie(t, post))
	router.ServeHTTP(httptest.NewRecorder(), req)

	if popped != nil {
		t.Fatalf("expected expired cookie to be ignored, got %v", popped)
	}
}
