// Package notice turns service outcomes into the short messages shown to the
// shopper after each action.
package notice

import (
	"errors"

	"github.com/sony/gobreaker/v2"

	"github.com/fjod/go_cart/storefront/internal/client"
	"github.com/fjod/go_cart/storefront/internal/service"
)

type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

type Notice struct {
	Level Level
	Text  string
}

func (n Notice) IsError() bool {
	return n.Level == LevelError
}

// Op is the user action a notice reports on.
type Op int

const (
	OpLogin Op = iota
	OpRegister
	OpLogout
	OpListProducts
	OpAddToCart
	OpUpdateQuantity
	OpRemoveFromCart
	OpClearCart
	OpCheckout
	OpListOrders
	OpCancelOrder
)

const textConnection = "Error de conexión con el servidor"

var successText = map[Op]string{
	OpLogin:          "Inicio de sesión exitoso",
	OpRegister:       "Registro exitoso. Ya puedes iniciar sesión",
	OpLogout:         "Sesión cerrada",
	OpListProducts:   "Productos cargados",
	OpAddToCart:      "Producto agregado al carrito",
	OpUpdateQuantity: "Cantidad actualizada",
	OpRemoveFromCart: "Producto eliminado del carrito",
	OpClearCart:      "Carrito vaciado",
	OpCheckout:       "Pedido realizado exitosamente",
	OpListOrders:     "Pedidos cargados",
	OpCancelOrder:    "Pedido cancelado",
}

// failureText is shown when the service answered without a message, and for
// cart operations whatever the cause.
var failureText = map[Op]string{
	OpLogin:          "Error al iniciar sesión",
	OpRegister:       "Error al registrar usuario",
	OpListProducts:   "Error cargando productos",
	OpAddToCart:      "Error al agregar producto al carrito",
	OpUpdateQuantity: "Error al actualizar cantidad",
	OpCheckout:       "Error al realizar el pedido",
	OpListOrders:     "Error al cargar los pedidos",
	OpCancelOrder:    "Error al cancelar el pedido",
}

// ops whose error body message reaches the shopper verbatim
var showsServiceMessage = map[Op]bool{
	OpLogin:       true,
	OpRegister:    true,
	OpCheckout:    true,
	OpListOrders:  true,
	OpCancelOrder: true,
}

func Succeeded(op Op) Notice {
	return Notice{Level: LevelSuccess, Text: successText[op]}
}

// FromError maps the outcome of op to a notice. A nil err is a success.
func FromError(op Op, err error) Notice {
	if err == nil {
		return Succeeded(op)
	}
	return Notice{Level: LevelError, Text: errorText(op, err)}
}

func errorText(op Op, err error) string {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		switch op {
		case OpAddToCart:
			return "Debes iniciar sesión para agregar productos al carrito"
		case OpCheckout:
			return "Debes iniciar sesión para realizar un pedido"
		}
		return "Debes iniciar sesión"
	case errors.Is(err, service.ErrCartEmpty):
		return "Tu carrito está vacío"
	case errors.Is(err, service.ErrPasswordMismatch):
		return "Las contraseñas no coinciden"
	case errors.Is(err, service.ErrPasswordTooShort):
		return "La contraseña debe tener al menos 6 caracteres"
	case errors.Is(err, service.ErrInvalidRegistration):
		return "Completa el nombre y un email válido"
	case errors.Is(err, service.ErrOutOfStock):
		return "Producto agotado"
	case errors.Is(err, service.ErrInsufficientStock), errors.Is(err, service.ErrProductNotFound):
		return "No hay suficiente stock disponible"
	case errors.Is(err, service.ErrInvalidQuantity):
		return "La cantidad debe ser un número entero"
	case errors.Is(err, service.ErrItemNotInCart):
		return "El producto no está en el carrito"
	case errors.Is(err, service.ErrNotPersisted):
		if op == OpCheckout {
			return "Pedido realizado, pero no se pudo guardar el carrito vacío"
		}
		return "No se pudo guardar el estado local"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "Servicio no disponible, inténtalo más tarde"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" && showsServiceMessage[op] {
			return apiErr.Message
		}
		if text, ok := failureText[op]; ok {
			return text
		}
		return textConnection
	}

	// transport failure
	switch op {
	case OpLogin, OpRegister, OpCheckout:
		return textConnection
	}
	if text, ok := failureText[op]; ok {
		return text
	}
	return textConnection
}
