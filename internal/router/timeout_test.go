package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	mem "pet-companion/internal/adapters/storage/memory"
	"pet-companion/internal/app"
	"pet-companion/internal/domain/coupons"
	"pet-companion/internal/domain/movies"
	"pet-companion/internal/domain/pets"
	"pet-companion/internal/domain/products"
	"pet-companion/internal/domain/stats"
	"pet-companion/internal/platform/config"
	"pet-companion/internal/router"
)

// blockingMessages no contesta nunca: cada llamada agota el timeout de mensaje.
type blockingMessages struct{}

func (blockingMessages) Generate(ctx context.Context, _ pets.MessageInput) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// startRealServer levanta un http.Server real (con sus timeouts) sobre el router.
func startRealServer(t *testing.T, cfg *config.Config) string {
	t.Helper()

	petsSvc := pets.NewService(mem.NewPetRepo(), pets.Options{
		Name:           cfg.Pet.Name,
		MessageTimeout: cfg.Pet.MessageTimeout,
		Messages:       blockingMessages{},
	})
	moviesSvc := movies.NewService(mem.NewMovieRepo(), nil)
	couponsSvc := coupons.NewService(mem.NewCouponRepo(), nil)
	productsSvc := products.NewService(mem.NewProductRepo(), nil)

	srv := app.NewHTTPServer(cfg, router.NewRouter(router.Options{
		Pets:     petsSvc,
		Movies:   moviesSvc,
		Coupons:  couponsSvc,
		Products: productsSvc,
		Stats:    stats.NewService(moviesSvc, couponsSvc, productsSvc),
	}))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() { _ = srv.Close() })

	return "http://" + ln.Addr().String()
}

func TestHTTP_InteractRespondsWhenMessageTimesOut(t *testing.T) {
	cfg := config.Default()
	cfg.Pet.MessageTimeout = 300 * time.Millisecond
	cfg.Server.WriteTimeout = config.MinWriteTimeout(cfg.Pet.MessageTimeout)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	baseURL := startRealServer(t, cfg)

	// Mascota nueva: creación + interacción => dos llamadas que agotan el timeout.
	start := time.Now()
	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Post(baseURL+"/pets/interact/addCoupon", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", res.StatusCode, body)
	}
	if elapsed := time.Since(start); elapsed < 2*cfg.Pet.MessageTimeout {
		t.Fatalf("expected both message calls to time out, took %s", elapsed)
	}

	var p petResp
	if err := json.Unmarshal(body, &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Happiness != 50 || p.Energy != 80 || p.Curiosity != 57 {
		t.Fatalf("expected committed stats 50/80/57, got %#v", p)
	}
	if p.LastInteractionType == nil || *p.LastInteractionType != "addCoupon" {
		t.Fatalf("expected last_interaction_type=addCoupon")
	}
	if p.LastMessage != "" {
		t.Fatalf("message never succeeded, expected empty, got %q", p.LastMessage)
	}
}

func TestHTTP_WriteTimeoutBelowMessageBudgetLosesResponse(t *testing.T) {
	cfg := config.Default()
	cfg.Pet.MessageTimeout = 300 * time.Millisecond
	cfg.Server.WriteTimeout = 200 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected config validation to reject write_timeout below the message budget")
	}
	baseURL := startRealServer(t, cfg)

	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Post(baseURL+"/pets/interact/addCoupon", "application/json", nil)
	if err == nil {
		_, err = io.ReadAll(res.Body)
		res.Body.Close()
	}
	if err == nil {
		t.Fatalf("expected the response to be cut by the write deadline")
	}
}
