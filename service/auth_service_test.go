package service

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func TestAuthService_ExtractToken_BearerFirst(t *testing.T) {
	a := NewAuthService(nil)

	req := &http.Request{Header: make(http.Header), URL: &url.URL{RawQuery: "token=q"}}
	req.Header.Set("Authorization", "Bearer headerToken")

	got := a.ExtractToken(req)
	if got != "headerToken" {
		t.Fatalf("expected headerToken, got %q", got)
	}
}

func TestAuthService_ExtractToken_QueryFallback(t *testing.T) {
	a := NewAuthService(nil)

	// WS 建连场景：浏览器 WebSocket API 传不了 header，token 走 query
	u, _ := url.Parse("ws://example.com/ws?token=queryToken")
	req := &http.Request{Header: make(http.Header), URL: u}

	got := a.ExtractToken(req)
	if got != "queryToken" {
		t.Fatalf("expected queryToken, got %q", got)
	}
}

func TestAuthService_AuthenticateRoundtrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthService(rdb)
	ctx := context.Background()

	token, err := a.Token().GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := a.Token().StoreToken(ctx, token, 42, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	uid, err := a.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != 42 {
		t.Fatalf("expected 42, got %d", uid)
	}

	// 无效 token：鉴权失败
	if _, err := a.Authenticate(ctx, "nope"); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestAuthService_RevokeToken(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthService(rdb)
	ctx := context.Background()

	token, _ := a.Token().GenerateToken()
	if err := a.Token().StoreToken(ctx, token, 7, time.Hour); err != nil {
		t.Fatalf("StoreToken: %v", err)
	}

	if err := a.RevokeToken(ctx, token); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if _, err := a.Authenticate(ctx, token); err == nil {
		t.Fatalf("expected error after revoke")
	}
}

func TestAuthService_RevokeAllTokensByUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAuthService(rdb)
	ctx := context.Background()

	// 多端登录：两个 token 指向同一用户
	t1, _ := a.Token().GenerateToken()
	t2, _ := a.Token().GenerateToken()
	if err := a.Token().StoreToken(ctx, t1, 7, time.Hour); err != nil {
		t.Fatalf("StoreToken t1: %v", err)
	}
	if err := a.Token().StoreToken(ctx, t2, 7, time.Hour); err != nil {
		t.Fatalf("StoreToken t2: %v", err)
	}

	if err := a.RevokeAllTokensByUser(ctx, 7); err != nil {
		t.Fatalf("RevokeAllTokensByUser: %v", err)
	}
	if _, err := a.Authenticate(ctx, t1); err == nil {
		t.Fatalf("expected t1 revoked")
	}
	if _, err := a.Authenticate(ctx, t2); err == nil {
		t.Fatalf("expected t2 revoked")
	}
}
