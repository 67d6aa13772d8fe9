package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

func userRow(id uint64, username, passwordHash string, active bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "uid", "username", "name", "password", "email", "role", "unit_id", "is_active", "last_login_at", "created_at", "updated_at", "deleted_at"}).
		AddRow(id, "u-"+username, username, "Nombre", passwordHash, "", "URBANISTA", nil, active, nil, now, now, nil)
}

func TestUserService_Login(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	base := &Service{DB: gormDB, RDB: rdb, TablePrefix: "sp_"}
	us := NewUserService(base)

	hash, err := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	mock.ExpectQuery("SELECT \\* FROM `sp_user`").
		WillReturnRows(userRow(3, "maria", string(hash), true))
	mock.ExpectExec("UPDATE `sp_user` SET `last_login_at`=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp, err := us.Login(context.Background(), LoginReq{Username: "maria", Password: "secreto"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected token")
	}
	if resp.User.Username != "maria" {
		t.Fatalf("expected maria, got %s", resp.User.Username)
	}

	// 签发的 token 能换回 userID
	uid, err := NewAuthService(rdb).Authenticate(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if uid != 3 {
		t.Fatalf("expected 3, got %d", uid)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	us := NewUserService(&Service{DB: gormDB, TablePrefix: "sp_"})

	hash, _ := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT \\* FROM `sp_user`").
		WillReturnRows(userRow(3, "maria", string(hash), true))

	if _, err := us.Login(context.Background(), LoginReq{Username: "maria", Password: "otra"}); err == nil {
		t.Fatalf("expected error for wrong password")
	}
}

func TestUserService_Login_InactiveAccount(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	us := NewUserService(&Service{DB: gormDB, TablePrefix: "sp_"})

	hash, _ := bcrypt.GenerateFromPassword([]byte("secreto"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT \\* FROM `sp_user`").
		WillReturnRows(userRow(3, "maria", string(hash), false))

	if _, err := us.Login(context.Background(), LoginReq{Username: "maria", Password: "secreto"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserService_Register_InvalidRoleFallsBackToVisita(t *testing.T) {
	gormDB, mock, sqlDB := newMockDB(t)
	defer func() { _ = sqlDB.Close() }()

	us := NewUserService(&Service{DB: gormDB, TablePrefix: "sp_"})

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `sp_user`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `sp_user`").
		WillReturnResult(sqlmock.NewResult(9, 1))

	dto, err := us.Register(RegisterReq{Username: "pedro", Password: "x", Role: "SUPERADMIN"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if dto.Role != "VISITA" {
		t.Fatalf("expected VISITA fallback, got %s", dto.Role)
	}
}
