package cron

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"roomledger/internal/ledger"
	"roomledger/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

func StartCronJob(db *sql.DB) *cron.Cron {
	c := cron.New()

	// Runs daily at midnight — remind members with negative balances.
	_, err := c.AddFunc("0 0 * * *", func() {
		if err := SendReminderEmailsToDebtors(db); err != nil {
			utils.Logger.Errorf("Cron job failed to send reminder emails: %v", err)
		}
	})
	if err != nil {
		utils.Logger.Errorf("Failed to schedule debtor reminder job: %v", err)
	}

	c.Start()
	utils.Logger.Info("Cron jobs started (debtor reminders daily at midnight)")
	return c
}

type memberContact struct {
	userID    int
	email     string
	firstName string
}

// SendReminderEmailsToDebtors walks every apartment, computes net balances
// with the ledger engine, and emails each member whose balance is negative.
func SendReminderEmailsToDebtors(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	apartmentRows, err := db.QueryContext(ctx, "SELECT id, name FROM apartments")
	if err != nil {
		return err
	}
	defer apartmentRows.Close()

	type apartment struct {
		id   int
		name string
	}
	var apartments []apartment
	for apartmentRows.Next() {
		var a apartment
		if err := apartmentRows.Scan(&a.id, &a.name); err != nil {
			utils.Logger.Errorf("Failed to scan apartment row: %v", err)
			continue
		}
		apartments = append(apartments, a)
	}
	if err := apartmentRows.Err(); err != nil {
		return err
	}

	for _, a := range apartments {
		contacts, balances, err := apartmentBalances(ctx, db, a.id)
		if err != nil {
			utils.Logger.Errorf("Failed to compute balances for apartment %d: %v", a.id, err)
			continue
		}
		notifyDebtors(contacts, balances, a.name, utils.SendDebtorReminderEmail)
	}

	return nil
}

type reminderSender func(to, firstName, owed, apartmentName string) error

// notifyDebtors emails every member with a negative balance concurrently.
// Failures are logged in place so a bad SMTP day cannot block the job.
func notifyDebtors(contacts []memberContact, balances map[int]decimal.Decimal, apartmentName string, send reminderSender) {
	var wg sync.WaitGroup

	for _, contact := range contacts {
		bal := balances[contact.userID]
		if !bal.IsNegative() {
			continue
		}

		owed := bal.Neg().StringFixed(2)

		wg.Add(1)
		go func(contact memberContact, owed string) {
			defer wg.Done()

			if err := send(contact.email, contact.firstName, owed, apartmentName); err != nil {
				utils.Logger.Errorf("failed to send reminder email to %s: %v", contact.email, err)
				return
			}

			utils.Logger.Infof("Sent reminder to %s (%s) — owes %s in '%s'",
				contact.firstName, contact.email, owed, apartmentName)
		}(contact, owed)
	}

	wg.Wait()
}

func apartmentBalances(ctx context.Context, db *sql.DB, apartmentID int) ([]memberContact, map[int]decimal.Decimal, error) {
	contactRows, err := db.QueryContext(ctx, `
		SELECT u.id, u.email, u.first_name
		FROM users u
		JOIN apartment_members m ON m.user_id = u.id
		WHERE m.apartment_id = ?
	`, apartmentID)
	if err != nil {
		return nil, nil, err
	}
	defer contactRows.Close()

	var contacts []memberContact
	var memberIDs []int
	for contactRows.Next() {
		var c memberContact
		if err := contactRows.Scan(&c.userID, &c.email, &c.firstName); err != nil {
			return nil, nil, err
		}
		contacts = append(contacts, c)
		memberIDs = append(memberIDs, c.userID)
	}
	if err := contactRows.Err(); err != nil {
		return nil, nil, err
	}

	expenseRows, err := db.QueryContext(ctx, "SELECT id, paid_by, amount FROM expenses WHERE apartment_id = ?", apartmentID)
	if err != nil {
		return nil, nil, err
	}
	defer expenseRows.Close()

	var expenses []ledger.Expense
	byID := make(map[int]int)
	for expenseRows.Next() {
		var e ledger.Expense
		if err := expenseRows.Scan(&e.ID, &e.PaidBy, &e.Amount); err != nil {
			return nil, nil, err
		}
		byID[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := expenseRows.Err(); err != nil {
		return nil, nil, err
	}

	splitRows, err := db.QueryContext(ctx, `
		SELECT s.expense_id, s.user_id, s.amount
		FROM expense_splits s
		JOIN expenses e ON s.expense_id = e.id
		WHERE e.apartment_id = ?
	`, apartmentID)
	if err != nil {
		return nil, nil, err
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID int
		var s ledger.Split
		if err := splitRows.Scan(&expenseID, &s.UserID, &s.Amount); err != nil {
			return nil, nil, err
		}
		if idx, ok := byID[expenseID]; ok {
			expenses[idx].Splits = append(expenses[idx].Splits, s)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, nil, err
	}

	settlementRows, err := db.QueryContext(ctx, "SELECT from_user, to_user, amount FROM settlements WHERE apartment_id = ?", apartmentID)
	if err != nil {
		return nil, nil, err
	}
	defer settlementRows.Close()

	var settlements []ledger.Settlement
	for settlementRows.Next() {
		var s ledger.Settlement
		if err := settlementRows.Scan(&s.FromUser, &s.ToUser, &s.Amount); err != nil {
			return nil, nil, err
		}
		settlements = append(settlements, s)
	}
	if err := settlementRows.Err(); err != nil {
		return nil, nil, err
	}

	balances, err := ledger.ComputeBalances(memberIDs, expenses, settlements)
	if err != nil {
		return nil, nil, err
	}

	return contacts, balances, nil
}
