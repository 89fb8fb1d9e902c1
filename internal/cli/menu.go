// Package cli is the interactive console menu over sales.Service.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"phone_sales/internal/sales"
)

const (
	pausePrompt = "Presione enter para continuar..."
	clearScreen = "\033[H\033[2J"
)

var errEndOfInput = errors.New("end of input")

// Menu reads options from in and writes prompts and results to out.
type Menu struct {
	svc    *sales.Service
	in     *bufio.Scanner
	out    io.Writer
	logger *zap.Logger
	source string

	// Clear emits an ANSI clear before each menu; leave it off when out is not a terminal.
	Clear bool
}

// NewMenu builds a menu. source is the storage description shown after a sale is saved.
func NewMenu(svc *sales.Service, in io.Reader, out io.Writer, source string, logger *zap.Logger) *Menu {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Menu{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
		source: source,
	}
}

// Run loops until the user picks 7, input ends or ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if m.Clear {
			fmt.Fprint(m.out, clearScreen)
		}
		m.showMenu()

		option, err := m.prompt("Seleccione una opción: ")
		if err != nil {
			return m.endOfInput(err)
		}

		switch option {
		case "1":
			err = m.addSale(ctx, sales.ChannelOnline)
		case "2":
			err = m.addSale(ctx, sales.ChannelLocal)
		case "3":
			err = m.findSale(ctx)
		case "4":
			err = m.updateSale(ctx)
		case "5":
			err = m.deleteSale(ctx)
		case "6":
			err = m.listSales(ctx)
		case "7":
			m.println("Saliendo del programa...")
			return nil
		default:
			m.println("Opción no válida, por favor, seleccione una opción válida.")
		}
		if err != nil {
			return m.endOfInput(err)
		}
	}
}

func (m *Menu) showMenu() {
	m.println("============ Venta de Celulares ============")
	m.println("1. Comprar por la página web")
	m.println("2. Comprar en nuestro local")
	m.println("3. Buscar Cliente por DNI")
	m.println("4. Actualizar Cliente")
	m.println("5. Eliminar Cliente por DNI")
	m.println("6. Mostrar todos los clientes")
	m.println("7. Salir")
	m.println("=============================================")
}

func (m *Menu) addSale(ctx context.Context, channel sales.Channel) error {
	dni, err := m.prompt("Ingrese DNI del cliente: ")
	if err != nil {
		return err
	}
	date, err := m.prompt("Ingrese la fecha que desea hacer la compra (Ej. 2024-01-01): ")
	if err != nil {
		return err
	}
	customer, err := m.prompt("Ingrese apellido y nombre: ")
	if err != nil {
		return err
	}
	quantity, err := m.prompt("Ingrese la cantidad de celulares que desea comprar: ")
	if err != nil {
		return err
	}

	sale, err := m.svc.CreateSale(ctx, channel, dni, date, customer, quantity)
	if err != nil {
		m.report(err)
	} else {
		m.printf("Venta creada y datos guardados exitosamente en %s.\n", m.source)
		m.println(sale.String())
	}
	return m.pause()
}

func (m *Menu) findSale(ctx context.Context) error {
	dni, err := m.prompt("Ingrese el DNI del cliente a buscar: ")
	if err != nil {
		return err
	}

	sale, err := m.svc.FindSale(ctx, dni)
	if err != nil {
		m.report(err)
	} else {
		m.printf("Venta encontrada con el DNI %d\n", sale.DNI)
		m.println(sale.String())
	}
	return m.pause()
}

// updateSale defaults to the quantity field when none is typed.
func (m *Menu) updateSale(ctx context.Context) error {
	dni, err := m.prompt("Ingrese el DNI del cliente para actualizar la venta: ")
	if err != nil {
		return err
	}
	field, err := m.prompt("Campo a actualizar (producto_vendido, fecha, cliente, envio_gratis, descuento_efectivo) [producto_vendido]: ")
	if err != nil {
		return err
	}
	if field == "" {
		field = sales.KeyQuantity
	}
	value, err := m.prompt("Ingrese el nuevo valor: ")
	if err != nil {
		return err
	}

	if err := m.svc.UpdateSale(ctx, dni, field, value); err != nil {
		m.report(err)
	} else {
		m.printf("Campo %s actualizado para el cliente con DNI: %s\n", field, strings.TrimSpace(dni))
	}
	return m.pause()
}

func (m *Menu) deleteSale(ctx context.Context) error {
	dni, err := m.prompt("Ingrese el DNI del cliente a eliminar: ")
	if err != nil {
		return err
	}

	if err := m.svc.DeleteSale(ctx, dni); err != nil {
		m.report(err)
	} else {
		m.printf("Cliente con DNI: %s eliminado correctamente\n", strings.TrimSpace(dni))
	}
	return m.pause()
}

func (m *Menu) listSales(ctx context.Context) error {
	all, err := m.svc.ListSales(ctx)
	if err != nil {
		m.report(err)
		return m.pause()
	}

	m.println("================ Listado Completo de Clientes =================")
	for _, s := range all {
		m.println(s.String())
	}
	m.println("==============================================================")
	return m.pause()
}

// report turns a service error into the message shown to the user.
func (m *Menu) report(err error) {
	switch {
	case errors.Is(err, sales.ErrDuplicateKey):
		m.println("Ya existe un cliente con ese DNI")
	case errors.Is(err, sales.ErrNotFound):
		m.println("No se encontró cliente con ese DNI")
	case errors.Is(err, sales.ErrUnknownField):
		m.printf("Campo inválido: %v\n", err)
	case errors.Is(err, sales.ErrValidation):
		m.printf("Error: %v\n", err)
	default:
		m.logger.Error("menu operation failed", zap.Error(err))
		m.printf("Error inesperado: %v\n", err)
	}
}

func (m *Menu) pause() error {
	_, err := m.prompt(pausePrompt)
	return err
}

func (m *Menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errEndOfInput
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// endOfInput treats a closed input as a normal exit.
func (m *Menu) endOfInput(err error) error {
	if errors.Is(err, errEndOfInput) {
		m.println("")
		return nil
	}
	return err
}

func (m *Menu) println(s string) {
	fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format, args...)
}
