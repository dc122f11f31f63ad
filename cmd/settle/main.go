// Command settle computes balances and a settlement plan from a ledger file.
//
// Usage:
//
//	settle -f ledger.yaml [-format text|json]
//
// The ledger lists the members and their expenses; JSON files are accepted too,
// since YAML is a superset of JSON:
//
//	members: [alice, bob, carol]
//	expenses:
//	  - id: dinner
//	    payer: alice
//	    items:
//	      - description: Pizza
//	        amount: 30.00
//	        sharedBy: [alice, bob, carol]
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/mmynk/splitperfect/internal/calculator"
	"github.com/mmynk/splitperfect/internal/money"
)

type ledgerFile struct {
	Members  []string      `yaml:"members"`
	Expenses []expenseFile `yaml:"expenses"`
}

type expenseFile struct {
	ID    string     `yaml:"id"`
	Payer string     `yaml:"payer"`
	Items []itemFile `yaml:"items"`
}

type itemFile struct {
	Description string      `yaml:"description"`
	Amount      money.Money `yaml:"amount"`
	SharedBy    []string    `yaml:"sharedBy"`
}

type jsonBalance struct {
	Member     string      `json:"member"`
	TotalPaid  money.Money `json:"totalPaid"`
	TotalOwed  money.Money `json:"totalOwed"`
	NetBalance money.Money `json:"netBalance"`
}

type jsonTransaction struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

type jsonReport struct {
	TotalExpenses money.Money       `json:"totalExpenses"`
	Balances      []jsonBalance     `json:"balances"`
	Transactions  []jsonTransaction `json:"transactions"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("settle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "Path to the ledger file (YAML or JSON); - reads stdin")
	format := fs.String("format", "text", "Output format: text or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *file == "" {
		fmt.Fprintln(stderr, "settle: -f is required")
		fs.Usage()
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "settle: unknown format %q\n", *format)
		return 2
	}

	ledger, err := readLedger(*file)
	if err != nil {
		fmt.Fprintf(stderr, "settle: %v\n", err)
		return 1
	}

	members, expenses := ledger.records()
	summary, err := calculator.Summarize(members, expenses)
	if err != nil {
		fmt.Fprintf(stderr, "settle: %v\n", err)
		return 1
	}

	if *format == "json" {
		err = writeJSON(stdout, summary)
	} else {
		err = writeText(stdout, summary)
	}
	if err != nil {
		fmt.Fprintf(stderr, "settle: %v\n", err)
		return 1
	}
	return 0
}

func readLedger(path string) (*ledgerFile, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	var ledger ledgerFile
	if err := yaml.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}
	if len(ledger.Members) == 0 {
		return nil, errors.New("ledger has no members")
	}
	return &ledger, nil
}

func (l *ledgerFile) records() ([]calculator.ParticipantID, []calculator.ExpenseRecord) {
	members := make([]calculator.ParticipantID, len(l.Members))
	for i, m := range l.Members {
		members[i] = calculator.ParticipantID(m)
	}

	expenses := make([]calculator.ExpenseRecord, len(l.Expenses))
	for i, e := range l.Expenses {
		items := make([]calculator.LineItem, len(e.Items))
		for j, item := range e.Items {
			sharedBy := make([]calculator.ParticipantID, len(item.SharedBy))
			for k, s := range item.SharedBy {
				sharedBy[k] = calculator.ParticipantID(s)
			}
			items[j] = calculator.LineItem{
				Description: item.Description,
				Amount:      item.Amount,
				SharedBy:    sharedBy,
			}
		}
		expenses[i] = calculator.ExpenseRecord{
			ID:    e.ID,
			Payer: calculator.ParticipantID(e.Payer),
			Items: items,
		}
	}
	return members, expenses
}

func writeText(w io.Writer, s *calculator.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Total expenses:\t%s\t\n\n", s.TotalExpenses)
	fmt.Fprintln(tw, "Member\tPaid\tOwed\tNet\t")
	for _, b := range s.Balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", b.Participant, b.TotalPaid, b.TotalOwed, signed(b.NetBalance))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(s.Transactions) == 0 {
		_, err := fmt.Fprintln(w, "\nAll settled up.")
		return err
	}
	fmt.Fprintln(w, "\nSettlement:")
	for _, t := range s.Transactions {
		if _, err := fmt.Fprintf(w, "  %s pays %s %s\n", t.From, t.To, t.Amount); err != nil {
			return err
		}
	}
	return nil
}

func signed(m money.Money) string {
	if m > 0 {
		return "+" + m.String()
	}
	return m.String()
}

func writeJSON(w io.Writer, s *calculator.Summary) error {
	report := jsonReport{
		TotalExpenses: s.TotalExpenses,
		Balances:      make([]jsonBalance, len(s.Balances)),
		Transactions:  make([]jsonTransaction, len(s.Transactions)),
	}
	for i, b := range s.Balances {
		report.Balances[i] = jsonBalance{
			Member:     string(b.Participant),
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
			NetBalance: b.NetBalance,
		}
	}
	for i, t := range s.Transactions {
		report.Transactions[i] = jsonTransaction{From: string(t.From), To: string(t.To), Amount: t.Amount}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
