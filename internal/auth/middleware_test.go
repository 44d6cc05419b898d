package auth

import (
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"adega-backend/internal/config"
	"adega-backend/internal/database"
	"adega-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *config.Config {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "adega.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("abrindo sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	return &config.Config{JWTSecret: "segredo-de-teste-com-32-caracteres!"}
}

// registerProtected: as rotas protegidas de exemplo, uma por aba.
func registerProtected(app *fiber.App, cfg *config.Config) {
	ok := func(c *fiber.Ctx) error { return c.SendString("ok") }

	protected := app.Group("", JWTMiddleware(cfg))
	protected.Get("/menu", RequireTab(TabMenu), ok)
	protected.Get("/sales", RequireTab(TabSales), ok)
	protected.Get("/cashier", RequireTab(TabCashier), ok)
	protected.Get("/stock", RequireTab(TabStock), ok)
	protected.Get("/team", RequireTab(TabTeam), ok)
	protected.Get("/admin-only", RequireRole(models.RoleAdmin), ok)
}

func setupApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	cfg := setupDB(t)
	app := fiber.New()
	registerProtected(app, cfg)
	return app, cfg
}

func tokenFor(t *testing.T, cfg *config.Config, role models.UserRole) string {
	t.Helper()
	user := models.User{Nome: "Teste", Email: "teste@adega.com", SenhaHash: "x", Role: role}
	if err := database.DB.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	token, err := GenerateToken(cfg.JWTSecret, &user)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func get(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode
}

func TestJWTMiddlewareSemToken(t *testing.T) {
	app, _ := setupApp(t)

	if got := get(t, app, "/menu", ""); got != fiber.StatusUnauthorized {
		t.Errorf("sem token: status = %d", got)
	}
	if got := get(t, app, "/menu", "token-invalido"); got != fiber.StatusUnauthorized {
		t.Errorf("token inválido: status = %d", got)
	}
}

func TestRequireTabAdminPassaDireto(t *testing.T) {
	app, cfg := setupApp(t)
	token := tokenFor(t, cfg, models.RoleAdmin)

	for _, path := range []string{"/menu", "/sales", "/cashier", "/stock", "/team", "/admin-only"} {
		if got := get(t, app, path, token); got != fiber.StatusOK {
			t.Errorf("admin em %s: status = %d", path, got)
		}
	}
}

func TestRequireTabAtendentePadroes(t *testing.T) {
	app, cfg := setupApp(t)
	token := tokenFor(t, cfg, models.RoleAtendente)

	// padrões do seed: menu e sales liberados, cashier/stock não
	tests := []struct {
		path string
		want int
	}{
		{"/menu", fiber.StatusOK},
		{"/sales", fiber.StatusOK},
		{"/cashier", fiber.StatusForbidden},
		{"/stock", fiber.StatusForbidden},
		{"/team", fiber.StatusForbidden},
		{"/admin-only", fiber.StatusForbidden},
	}
	for _, tt := range tests {
		if got := get(t, app, tt.path, token); got != tt.want {
			t.Errorf("atendente em %s: status = %d, esperava %d", tt.path, got, tt.want)
		}
	}
}

func TestRequireTabReleAPermissaoACadaRequisicao(t *testing.T) {
	app, cfg := setupApp(t)
	token := tokenFor(t, cfg, models.RoleAtendente)

	if got := get(t, app, "/cashier", token); got != fiber.StatusForbidden {
		t.Fatalf("antes da mudança: status = %d", got)
	}

	// admin libera a aba de caixa direto no registro
	perms := models.DefaultAtendentePermissions()
	perms.Cashier = true
	raw, _ := json.Marshal(perms)
	var cfgRow models.SystemConfig
	if err := database.DB.Where("key = ?", models.ConfigKeyAtendentePermissions).First(&cfgRow).Error; err != nil {
		t.Fatal(err)
	}
	cfgRow.Value = string(raw)
	if err := database.DB.Save(&cfgRow).Error; err != nil {
		t.Fatal(err)
	}

	// mesmo token, sem relogar
	if got := get(t, app, "/cashier", token); got != fiber.StatusOK {
		t.Errorf("depois da mudança: status = %d, permissão devia valer na hora", got)
	}

	// team continua proibida mesmo com tudo liberado
	if got := get(t, app, "/team", token); got != fiber.StatusForbidden {
		t.Errorf("team para atendente: status = %d", got)
	}
}

func TestLoadAtendentePermissionsFallback(t *testing.T) {
	_, _ = setupApp(t)

	// registro quebrado cai nos padrões
	var cfgRow models.SystemConfig
	if err := database.DB.Where("key = ?", models.ConfigKeyAtendentePermissions).First(&cfgRow).Error; err != nil {
		t.Fatal(err)
	}
	cfgRow.Value = "{corrompido"
	if err := database.DB.Save(&cfgRow).Error; err != nil {
		t.Fatal(err)
	}

	perms, err := LoadAtendentePermissions()
	if err != nil {
		t.Fatal(err)
	}
	if perms != models.DefaultAtendentePermissions() {
		t.Errorf("fallback = %+v", perms)
	}
}
