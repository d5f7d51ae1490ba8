// Package app is the client application controller: it parses command input,
// drives the persistence adapter, and renders results. One controller serves
// every backend; which one is active is decided only at startup.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"gastos/internal/client/session"
	"gastos/internal/logging"
	"gastos/internal/model"
	"gastos/internal/store"
)

// App binds the controller to its collaborators.
type App struct {
	store    store.Store
	mode     string
	sessions *session.Manager
	apiURL   string
	client   *http.Client
	log      logging.Logger
	out      io.Writer
}

// New creates the controller.
func New(s store.Store, mode string, sessions *session.Manager, apiURL string, log logging.Logger, out io.Writer) *App {
	return &App{
		store:    s,
		mode:     mode,
		sessions: sessions,
		apiURL:   apiURL,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log,
		out:      out,
	}
}

// Run dispatches a single command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage()
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout()
	case "list":
		return a.list(ctx)
	case "dashboard":
		return a.dashboard(ctx)
	case "add-receita":
		return a.add(ctx, model.TransactionTypeIncome, rest)
	case "add-despesa":
		return a.add(ctx, model.TransactionTypeExpense, rest)
	case "edit":
		return a.edit(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "convert":
		return a.convert(ctx, rest)
	default:
		return a.usage()
	}
}

func (a *App) usage() error {
	fmt.Fprintln(a.out, `usage:
  register <username> <password>
  login <username> <password>
  logout
  dashboard
  list
  add-receita <descricao> <valor> <categoria>
  add-despesa <descricao> <valor> <categoria>
  edit <id> <descricao> <valor> <categoria>
  delete <id>
  convert <from> <to> <amount>`)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("register needs <username> <password>")
	}

	user, err := a.store.Register(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "user %q registered (id %d), now log in\n", user.Username, user.ID)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("login needs <username> <password>")
	}

	user, err := a.store.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	a.log.Info(ctx, "logged in", "user", user.Username, "mode", a.mode)
	fmt.Fprintf(a.out, "olá, %s!\n", user.Username)
	return nil
}

// logout discards the stored session. Tokens are stateless on the server, so
// there is nothing to invalidate remotely.
func (a *App) logout() error {
	if err := a.sessions.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *App) list(ctx context.Context) error {
	txs, err := a.store.ListTransactions(ctx)
	if err != nil {
		return err
	}
	a.renderTransactions(txs)
	return nil
}

// dashboard prints income/expense totals, the resulting balance, and the
// five most recent transactions.
func (a *App) dashboard(ctx context.Context) error {
	txs, err := a.store.ListTransactions(ctx)
	if err != nil {
		return err
	}

	receitas, despesas := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Tipo == model.TransactionTypeIncome {
			receitas = receitas.Add(tx.Valor)
		} else {
			despesas = despesas.Add(tx.Valor)
		}
	}

	fmt.Fprintf(a.out, "receitas: %s\ndespesas: %s\nsaldo:    %s\n",
		receitas.StringFixed(2), despesas.StringFixed(2), receitas.Sub(despesas).StringFixed(2))

	recent := txs
	if len(recent) > 5 {
		recent = recent[:5]
	}
	a.renderTransactions(recent)
	return nil
}

func (a *App) add(ctx context.Context, tipo model.TransactionType, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("add needs <descricao> <valor> <categoria>")
	}

	valor, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("invalid valor %q", args[1])
	}

	tx, err := a.store.CreateTransaction(ctx, store.TransactionInput{
		Descricao: args[0],
		Valor:     valor,
		Tipo:      tipo,
		Categoria: args[2],
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s added (id %d)\n", tx.Tipo, tx.ID)
	return nil
}

func (a *App) edit(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("edit needs <id> <descricao> <valor> <categoria>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	valor, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid valor %q", args[2])
	}

	tx, err := a.store.UpdateTransaction(ctx, id, store.TransactionUpdate{
		Descricao: args[1],
		Valor:     valor,
		Categoria: args[3],
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "transaction %d updated\n", tx.ID)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("delete needs <id>")
	}

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := a.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "transaction %d deleted\n", id)
	return nil
}

// convert always goes through the backend's conversion passthrough, whichever
// store is active; rates have no offline source.
func (a *App) convert(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("convert needs <from> <to> <amount>")
	}
	from, to, amount := args[0], args[1], args[2]

	url := fmt.Sprintf("%s/converter-moeda?from=%s&to=%s&amount=%s", a.apiURL, from, to, amount)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build conversion request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("call conversion API: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Result           string      `json:"result"`
		ConversionRate   float64     `json:"conversion_rate"`
		ConversionResult json.Number `json:"conversion_result"`
		Error            string      `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode conversion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || payload.Result != "success" {
		if payload.Error != "" {
			return fmt.Errorf("conversion failed: %s", payload.Error)
		}
		return fmt.Errorf("conversion failed: status %d", resp.StatusCode)
	}

	fmt.Fprintf(a.out, "%s %s = %s %s (rate %.4f)\n", amount, from, payload.ConversionResult, to, payload.ConversionRate)
	return nil
}

func (a *App) renderTransactions(txs []model.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "nenhuma transação encontrada")
		return
	}

	table := tablewriter.NewWriter(a.out)
	table.SetHeader([]string{"ID", "Data", "Tipo", "Descrição", "Categoria", "Valor"})
	for _, tx := range txs {
		sinal := "+"
		if tx.Tipo == model.TransactionTypeExpense {
			sinal = "-"
		}
		table.Append([]string{
			strconv.FormatUint(uint64(tx.ID), 10),
			tx.Data.Format("2006-01-02"),
			string(tx.Tipo),
			tx.Descricao,
			tx.Categoria,
			sinal + tx.Valor.StringFixed(2),
		})
	}
	table.Render()
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(id), nil
}
