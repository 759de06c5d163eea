package handlers

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"storefront/internal/accounts"
	"storefront/internal/auth"
	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/orders"
	"storefront/internal/uploads"
)

// Deps are the services the router hands out to handlers.
type Deps struct {
	DB       *gorm.DB
	Uploads  *uploads.Dir
	Products *catalog.Store
	Accounts *accounts.Service
	Orders   *orders.Service
	Contact  ContactSender
	Issuer   *auth.Issuer
	Log      logrus.FieldLogger

	CORSOrigin    string
	SessionSecret string
	// SecureCookies restricts the token and session cookies to HTTPS.
	SecureCookies bool
	// PublicDir optionally serves a static frontend for unmatched paths.
	PublicDir string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.CORS(d.CORSOrigin))
	r.Use(middleware.SecurityHeaders())

	store := cookie.NewStore([]byte(d.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   d.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(SessionName, store))

	r.GET("/health", Health(d.DB))
	r.Static("/uploads", d.Uploads.Root())

	products := NewProductsHandler(d.Products, d.Uploads, d.Log)
	authH := NewAuthHandler(d.Accounts, d.Issuer, d.SecureCookies, d.Log)
	ordersH := NewOrdersHandler(d.Orders, d.Log)
	cart := NewCartHandler(d.Products, d.Orders, d.Log)
	contact := NewContactHandler(d.Contact, d.Log)
	requireUser := auth.RequireUser(d.Issuer)

	api := r.Group("/api")
	{
		api.POST("/upload-product", products.Create)
		api.GET("/products", products.List)
		api.GET("/products/related", products.Related)
		api.GET("/products/:id", products.Get)
		api.PUT("/products/edit/:id", products.Update)
		api.DELETE("/products/image/:id", products.RemoveImage)
		api.DELETE("/products/delete/:id", products.Delete)

		api.POST("/register", authH.Register)
		api.POST("/login", authH.Login)
		api.POST("/logout", authH.Logout)
		api.GET("/user", requireUser, authH.Me)
		api.GET("/check-auth", requireUser, authH.CheckAuth)

		api.POST("/orders", requireUser, ordersH.Place)
		api.GET("/orders/my", requireUser, ordersH.Mine)
		api.GET("/orders/:id", requireUser, ordersH.Get)

		api.GET("/cart", cart.Show)
		api.POST("/cart", cart.Add)
		api.POST("/cart/update", cart.Update)
		api.POST("/cart/remove", cart.Remove)

		api.POST("/contact", contact.Submit)
	}

	r.NoRoute(frontend(d.PublicDir))
	return r
}

// frontend serves files from dir and falls back to register.html. API
// paths and requests without a public dir get a JSON 404.
func frontend(dir string) gin.HandlerFunc {
	fs := http.Dir(dir)
	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if dir == "" || strings.HasPrefix(urlPath, "/api/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			errorJSON(c, http.StatusNotFound, "Not found")
			return
		}

		name := path.Clean("/" + urlPath)
		if f, err := fs.Open(name); err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && !info.IsDir() {
				c.FileFromFS(name, fs)
				return
			}
		}
		c.FileFromFS("/register.html", fs)
	}
}
