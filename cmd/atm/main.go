// Command atm is the terminal ATM client. It is a thin render loop over
// the workflow state machines in internal/flow; every keystroke becomes
// a flow event and every screen is printed from flow state.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/banclabs/cajero/config"
	"github.com/banclabs/cajero/internal/flow"
	"github.com/banclabs/cajero/internal/gateway"
	"github.com/banclabs/cajero/internal/receipt"
	"github.com/banclabs/cajero/internal/session"
	"github.com/banclabs/cajero/pkg/helpers"
)

type app struct {
	in          *bufio.Scanner
	client      *gateway.Client
	sess        *session.Store
	lastBalance int64
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	var logger *logrus.Logger
	if os.Getenv("ATM_DEBUG") != "" {
		logger = helpers.NewLogger(cfg.AppName, cfg.Env)
	} else {
		logger = helpers.NewTestLogger()
	}

	sess := session.NewStore()
	a := &app{
		in:     bufio.NewScanner(os.Stdin),
		client: gateway.New(cfg.GatewayBaseURL, cfg.GatewayTimeout, sess, logger),
		sess:   sess,
	}

	fmt.Println("════════ CAJERO AUTOMÁTICO ════════")
	for {
		if _, ok := a.sess.Current(); !ok {
			if !a.entryMenu() {
				return
			}
			continue
		}
		if !a.mainMenu() {
			return
		}
	}
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		os.Exit(0)
	}
	return a.in.Text()
}

// entryMenu returns false when the user quits.
func (a *app) entryMenu() bool {
	fmt.Println("\n[1] Ingresar  [2] Crear cuenta  [0] Salir")
	switch a.prompt("> ") {
	case "1":
		a.runLogin()
	case "2":
		a.runOnboarding()
	case "0":
		return false
	}
	return true
}

func (a *app) runLogin() {
	f := flow.NewAuth(a.client, a.sess)
	for f.State != flow.StateAuthenticated {
		if f.ErrMsg != "" {
			fmt.Println("⚠", f.ErrMsg)
		}
		switch f.State {
		case flow.StateAccountEntry:
			line := a.prompt("N° de cuenta (vacío para volver): ")
			if line == "" {
				return
			}
			for _, r := range line {
				f.PressAccountDigit(r)
			}
			f.ConfirmAccount()
		case flow.StatePinEntry:
			line := a.prompt("PIN (4 dígitos, 'b' para volver): ")
			if line == "b" {
				f.Back()
				continue
			}
			for _, r := range line {
				f.PressPinDigit(r)
			}
			if f.SubmitPin(context.Background()) == flow.SubmitIncomplete {
				fmt.Println("⚠ Ingresa los 4 dígitos del PIN")
			}
		}
	}
	id, _ := a.sess.Current()
	fmt.Printf("Bienvenido, %s (cuenta %s)\n", id.DisplayName, id.AccountNumber)
}

func (a *app) runOnboarding() {
	f := flow.NewOnboarding(a.client)
	for f.State != flow.StateAwaitingVerification {
		if f.ErrMsg != "" {
			fmt.Println("⚠", f.ErrMsg)
		}
		switch f.State {
		case flow.StatePersonalData:
			f.SetFirstName(a.prompt("Nombre: "))
			f.SetLastName(a.prompt("Apellido: "))
			f.SetEmail(a.prompt("Correo: "))
			if !f.SubmitPersonalData() {
				for field, msg := range f.FieldErrs {
					fmt.Printf("⚠ %s: %s\n", field, msg)
				}
				if a.prompt("Reintentar? (s/n): ") != "s" {
					return
				}
			}
		case flow.StatePinCreate, flow.StatePinConfirm:
			label := "Crea tu PIN de 4 dígitos: "
			if f.State == flow.StatePinConfirm {
				label = "Confirma tu PIN: "
			}
			for _, r := range a.prompt(label) {
				f.PressPinDigit(r)
			}
			if f.SubmitPin(context.Background()) == flow.SubmitIncomplete {
				fmt.Println("⚠ Ingresa los 4 dígitos")
			}
		}
	}
	fmt.Println(f.ServerMessage)
	a.runVerification(f.Email, f.ServerMessage)
}

func (a *app) runVerification(email, serverMessage string) {
	f := flow.NewVerification(a.client, email, serverMessage)
	lastTick := time.Now()
	for !f.Activated {
		// The CLI has no timer loop; account the elapsed wall time to
		// the cooldown before each interaction instead.
		elapsed := int(time.Since(lastTick).Seconds())
		for i := 0; i < elapsed; i++ {
			f.Tick()
		}
		lastTick = time.Now()

		if f.ErrMsg != "" {
			fmt.Println("⚠", f.ErrMsg)
		}
		fmt.Printf("Código enviado a %s\n", email)
		line := a.prompt("Código de 6 dígitos ('r' reenviar, 'q' salir): ")
		switch line {
		case "q":
			return
		case "r":
			if f.Cooldown > 0 {
				fmt.Printf("Reenviar disponible en %ds\n", f.Cooldown)
				continue
			}
			if f.Resend(context.Background()) == flow.SubmitOK {
				fmt.Println("Código reenviado.")
			}
		default:
			f.Paste(context.Background(), line)
		}
	}
	fmt.Println("¡CUENTA ACTIVADA!")
	if f.AccountNumber != "" {
		fmt.Println("Tu número de cuenta:", f.AccountNumber)
	}
}

// mainMenu returns false when the user quits the program.
func (a *app) mainMenu() bool {
	fmt.Println("\n[1] Saldo  [2] Retiro  [3] Depósito  [4] Transferencia")
	fmt.Println("[5] Historial  [6] Cambiar PIN  [7] Cerrar sesión  [0] Salir")
	switch a.prompt("> ") {
	case "1":
		a.runBalance()
	case "2":
		if a.refreshBalance() {
			a.runTransaction(flow.NewWithdrawal(a.client, a.lastBalance))
		}
	case "3":
		a.runTransaction(flow.NewDeposit(a.client))
	case "4":
		if a.refreshBalance() {
			a.runTransaction(flow.NewTransfer(a.client, a.lastBalance))
		}
	case "5":
		a.runHistory()
	case "6":
		a.runPinChange()
	case "7":
		a.logout()
	case "0":
		return false
	}
	return true
}

func (a *app) runBalance() {
	res, err := a.client.Balance(context.Background())
	if err != nil {
		fmt.Println("⚠", err)
		return
	}
	a.lastBalance = res.Balance
	fmt.Printf("SALDO ACTUAL: %s\n", receipt.FormatCOP(res.Balance))
	fmt.Printf("Titular: %s  Cuenta: %s  Tipo: %s\n", res.HolderName, res.AccountNumber, res.Type)
}

// refreshBalance makes sure the bounded flows get a recent balance to
// guard against. Returns false when the lookup itself failed.
func (a *app) refreshBalance() bool {
	res, err := a.client.Balance(context.Background())
	if err != nil {
		fmt.Println("⚠", err)
		return false
	}
	a.lastBalance = res.Balance
	return true
}

func (a *app) runTransaction(f *flow.TransactionFlow) {
	for f.State != flow.StateReceipt {
		if f.ErrMsg != "" {
			fmt.Println("⚠", f.ErrMsg)
		}
		switch f.State {
		case flow.StateDestinationEntry:
			line := a.prompt("Cuenta destino (vacío para volver): ")
			if line == "" {
				return
			}
			for _, r := range line {
				f.PressDestinationDigit(r)
			}
			f.SetMemo(a.prompt("Descripción (opcional): "))
			f.ConfirmDestination()
		case flow.StateAmountEntry:
			fmt.Print("Montos rápidos: ")
			for i, p := range flow.Presets {
				fmt.Printf("[%d] %s  ", i+1, receipt.FormatCOP(p))
			}
			fmt.Println()
			line := a.prompt("Monto (o número de acceso rápido, vacío para volver): ")
			if line == "" {
				return
			}
			if idx, err := strconv.Atoi(line); err == nil && idx >= 1 && idx <= len(flow.Presets) && len(line) == 1 {
				f.SelectPreset(flow.Presets[idx-1])
			} else {
				f.ClearAmount()
				for _, r := range line {
					f.PressAmountDigit(r)
				}
			}
			f.Submit(context.Background())
		}
	}
	printReceipt(receipt.Format(*f.Result))
	a.lastBalance = f.Result.BalanceAfter
}

func printReceipt(r receipt.Receipt) {
	fmt.Printf("\n%s %s EXITOSO — COMPROBANTE #%s\n", r.Symbol, r.Label, r.Number)
	fmt.Println("MONTO:         ", r.Amount)
	fmt.Println("SALDO ANTERIOR:", r.BalanceBefore)
	fmt.Println("SALDO ACTUAL:  ", r.BalanceAfter)
	if r.Counterparty != "" {
		fmt.Println("DESTINATARIO:  ", r.Counterparty)
	}
	fmt.Println("FECHA:         ", r.Timestamp)
}

func (a *app) runHistory() {
	h := flow.NewHistory(a.client)
	if h.Load(context.Background()) == flow.SubmitRejected {
		fmt.Println("⚠", h.ErrMsg)
		return
	}
	for {
		pg := h.Page
		fmt.Printf("\nHISTORIAL — página %d/%d (%d movimientos)\n", h.PageIndex()+1, pg.TotalPages(), pg.TotalCount)
		for _, it := range pg.Items {
			sign := "-"
			if it.Type == gateway.TypeDeposit {
				sign = "+"
			}
			fmt.Printf("  %s%s  %s  %s\n", sign, receipt.FormatCOP(it.Amount), it.Description, receipt.FormatTimestamp(it.Timestamp))
		}
		if len(pg.Items) == 0 {
			fmt.Println("  Sin movimientos registrados")
		}
		line := a.prompt("[n] siguiente  [p] anterior  [q] volver: ")
		switch line {
		case "n":
			if h.Next(context.Background()) == flow.SubmitRejected {
				fmt.Println("⚠", h.ErrMsg)
			}
		case "p":
			if h.Prev(context.Background()) == flow.SubmitRejected {
				fmt.Println("⚠", h.ErrMsg)
			}
		case "q":
			return
		}
	}
}

func (a *app) runPinChange() {
	f := flow.NewPinChange(a.client)
	labels := map[flow.PinChangeState]string{
		flow.StateCurrentPin: "PIN actual: ",
		flow.StateNewPin:     "Nuevo PIN: ",
		flow.StateConfirmPin: "Confirma el nuevo PIN: ",
	}
	for f.State != flow.StatePinChanged {
		if f.ErrMsg != "" {
			fmt.Println("⚠", f.ErrMsg)
		}
		line := a.prompt(labels[f.State] + "('q' para volver) ")
		if line == "q" {
			return
		}
		for _, r := range line {
			f.PressDigit(r)
		}
		if f.Submit(context.Background()) == flow.SubmitIncomplete {
			fmt.Println("⚠ Ingresa los 4 dígitos")
		}
	}
	fmt.Println("✓", f.Message)
}

func (a *app) logout() {
	if err := a.client.Logout(context.Background()); err != nil {
		// Logout is best-effort; the local session is cleared anyway.
		fmt.Println("⚠", err)
	}
	a.sess.Clear()
	a.lastBalance = 0
	fmt.Println("Sesión cerrada.")
}
