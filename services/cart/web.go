package cart

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/MarcGrol/storefront/lib/mycontext"
	"github.com/MarcGrol/storefront/lib/myerrors"
	"github.com/MarcGrol/storefront/lib/myhttp"
	"github.com/MarcGrol/storefront/lib/mylog"
	"github.com/MarcGrol/storefront/lib/mymoney"
	"github.com/MarcGrol/storefront/lib/myuuid"
	"github.com/MarcGrol/storefront/services/catalog"
)

type Catalog interface {
	List() []catalog.Product
	Get(uid string) (catalog.Product, bool)
}

type webService struct {
	logger   mylog.Logger
	store    *Store
	catalog  Catalog
	uuider   myuuid.UUIDer
	currency string
}

// Use dependency injection to isolate the infrastructure and ease testing
func NewWebService(store *Store, catalog Catalog, uuider myuuid.UUIDer, currency string) *webService {
	return &webService{
		logger:   mylog.New("cart"),
		store:    store,
		catalog:  catalog,
		uuider:   uuider,
		currency: currency,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/", s.redirectToCart()).Methods("GET")
	router.HandleFunc("/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/cart/add", s.addItem()).Methods("POST")
	router.HandleFunc("/cart/remove", s.removeItem()).Methods("POST")
	router.HandleFunc("/cart/quantity", s.updateQuantity()).Methods("POST")
	router.HandleFunc("/cart/clear", s.clearCart()).Methods("POST")

	// Read api for the header badge and the side panel
	router.HandleFunc("/api/cart", s.getCart()).Methods("GET")

	return nil
}

//go:embed templates
var templateFolder embed.FS
var cartPageTemplate *template.Template

func init() {
	cartPageTemplate = template.Must(template.New("cart.html").Funcs(template.FuncMap{
		"formatAmount": mymoney.Format,
	}).ParseFS(templateFolder, "templates/cart.html"))
}

type cartPageInfo struct {
	Cart     Cart
	Currency string
	Products []catalog.Product
}

type lineForm struct {
	ProductUID string `form:"productUid"`
	Size       string `form:"size"`
	Color      string `form:"color"`
	Quantity   *int   `form:"quantity"`
}

type CartView struct {
	Lines       []Line          `json:"lines"`
	Count       int             `json:"count"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
}

func (s *webService) redirectToCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		cart, err := s.store.Get(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = cartPageTemplate.Execute(w, cartPageInfo{
			Cart:     cart,
			Currency: s.currency,
			Products: s.catalog.List(),
		})
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}
	}
}

func (s *webService) addItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		form, err := parseLineForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		product, found := s.catalog.Get(form.ProductUID)
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", form.ProductUID)))
			return
		}
		if !product.HasSize(form.Size) || !product.HasColor(form.Color) {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputError(fmt.Errorf("product %s is not available in size '%s' and color '%s'", product.UID, form.Size, form.Color)))
			return
		}

		quantity := 1
		if form.Quantity != nil {
			quantity = *form.Quantity
		}

		_, err = s.store.AddItem(c, sessionUID, Product{
			UID:   product.UID,
			Name:  product.Name,
			Price: product.Price,
			Image: product.Image,
		}, form.Size, form.Color, quantity)
		if err != nil {
			errorWriter.WriteError(c, w, 4, myerrors.NewInternalError(err))
			return
		}

		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}

func (s *webService) removeItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		form, err := parseLineForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		_, err = s.store.RemoveItem(c, sessionUID, form.ProductUID, form.Size, form.Color)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}

		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}

func (s *webService) updateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		form, err := parseLineForm(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if form.Quantity == nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("missing quantity for product %s", form.ProductUID))
			return
		}

		_, err = s.store.UpdateQuantity(c, sessionUID, form.ProductUID, *form.Quantity, form.Size, form.Color)
		if err != nil {
			errorWriter.WriteError(c, w, 3, myerrors.NewInternalError(err))
			return
		}

		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}

func (s *webService) clearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		_, err := s.store.Clear(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		http.Redirect(w, r, "/cart", http.StatusSeeOther)
	}
}

func (s *webService) getCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := SessionUID(w, r, s.uuider)

		cart, err := s.store.Get(c, sessionUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, NewCartView(cart, s.currency))
	}
}

func NewCartView(cart Cart, currency string) CartView {
	lines := cart.Lines
	if lines == nil {
		lines = []Line{}
	}
	return CartView{
		Lines:       lines,
		Count:       cart.Count(),
		TotalAmount: cart.TotalAmount(),
		Currency:    currency,
	}
}

func parseLineForm(r *http.Request) (lineForm, error) {
	err := r.ParseForm()
	if err != nil {
		return lineForm{}, myerrors.NewInvalidInputError(err)
	}
	return lineFormFromValues(r.Form)
}

func lineFormFromValues(values url.Values) (lineForm, error) {
	form := lineForm{}
	err := formcodec.NewDecoder().Decode(&form, values)
	if err != nil {
		return form, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}
	if form.ProductUID == "" {
		return form, myerrors.NewInvalidInputErrorf("missing productUid")
	}
	return form, nil
}
