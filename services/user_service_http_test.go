package services_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"kickoff-api/models"
	"kickoff-api/testhelpers"
	"kickoff-api/utils"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterAndLogin(t *testing.T) {
	app, db := newTestApp(t)

	body := fiber.Map{"username": "ana", "email": "ana@example.com", "password": "s3cret"}
	req := authedRequest(t, http.MethodPost, "/users/register", nil, body)
	resp := doReq(t, app, req)
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201 on register, got %d", resp.StatusCode)
	}
	var reg struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		t.Fatalf("decode register: %v", err)
	}
	if _, err := utils.VerifyToken(reg.Token); err != nil {
		t.Errorf("register should return a valid token: %v", err)
	}

	// stored password must be a hash, not the plaintext
	var user models.User
	if err := db.Where("username = ?", "ana").First(&user).Error; err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if user.Password == "s3cret" || !utils.CheckPassword(user.Password, "s3cret") {
		t.Error("password must be stored as a verifiable hash")
	}

	// same username again conflicts
	req = authedRequest(t, http.MethodPost, "/users/register", nil, body)
	resp = doReq(t, app, req)
	if resp.StatusCode != 409 {
		t.Errorf("duplicate username should be 409, got %d", resp.StatusCode)
	}

	// login with the right and wrong password
	req = authedRequest(t, http.MethodPost, "/users/login", nil, fiber.Map{"username": "ana", "password": "s3cret"})
	resp = doReq(t, app, req)
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 on login, got %d", resp.StatusCode)
	}
	req = authedRequest(t, http.MethodPost, "/users/login", nil, fiber.Map{"username": "ana", "password": "wrong"})
	resp = doReq(t, app, req)
	if resp.StatusCode != 401 {
		t.Errorf("wrong password should be 401, got %d", resp.StatusCode)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	app, _ := newTestApp(t)

	req := authedRequest(t, http.MethodPost, "/users/register", nil, fiber.Map{"username": "ana"})
	resp := doReq(t, app, req)
	if resp.StatusCode != 400 {
		t.Errorf("missing fields should be 400, got %d", resp.StatusCode)
	}
}

func TestGetUserHidesPassword(t *testing.T) {
	app, db := newTestApp(t)
	user := testhelpers.CreateUser(t, db, "ana")

	req := authedRequest(t, http.MethodGet, "/users/ana", user, nil)
	resp := doReq(t, app, req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, leaked := payload["password"]; leaked {
		t.Error("password hash must never be serialized")
	}

	req = authedRequest(t, http.MethodGet, "/users/ghost", user, nil)
	resp = doReq(t, app, req)
	if resp.StatusCode != 404 {
		t.Errorf("unknown username should be 404, got %d", resp.StatusCode)
	}
}

func TestUpdateUserIsSelfOnly(t *testing.T) {
	app, db := newTestApp(t)
	ana := testhelpers.CreateUser(t, db, "ana")
	bo := testhelpers.CreateUser(t, db, "bo")

	body := fiber.Map{"username": "ana2", "email": "ana2@example.com"}
	req := authedRequest(t, http.MethodPut, "/users/"+itoa(ana.ID), bo, body)
	resp := doReq(t, app, req)
	if resp.StatusCode != 403 {
		t.Errorf("updating someone else should be 403, got %d", resp.StatusCode)
	}

	req = authedRequest(t, http.MethodPut, "/users/"+itoa(ana.ID), ana, body)
	resp = doReq(t, app, req)
	if resp.StatusCode != 200 {
		t.Fatalf("self update should be 200, got %d", resp.StatusCode)
	}
	var updated models.User
	if err := db.First(&updated, ana.ID).Error; err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if updated.Username != "ana2" || updated.Email != "ana2@example.com" {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestUpdatePassword(t *testing.T) {
	app, db := newTestApp(t)
	ana := testhelpers.CreateUser(t, db, "ana")

	req := authedRequest(t, http.MethodPut, "/users/"+itoa(ana.ID)+"/password", ana, fiber.Map{"newPassword": "fresh"})
	resp := doReq(t, app, req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var updated models.User
	if err := db.First(&updated, ana.ID).Error; err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if !utils.CheckPassword(updated.Password, "fresh") {
		t.Error("new password should verify against the stored hash")
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
