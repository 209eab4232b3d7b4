package busdecisionlog

import (
	"database/sql"
	"fmt"
	"time"
)

func create(store Store, d Decision) error {
	const query = `
		INSERT INTO decisionlog
		(
			ExecutionIdentifier,
			Hostname,
			Timestamp,
			TemperatureC,
			RuleName,
			Command,
			Status,
			Wrote
		)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	temperature := sql.NullInt64{Int64: d.TemperatureC, Valid: d.TemperatureValid}
	ruleName := sql.NullString{String: d.RuleName, Valid: d.RuleName != ""}
	command := sql.NullString{String: d.Command, Valid: d.Command != ""}

	err := store.Create(query,
		d.ExecutionIdentifier,
		d.Hostname,
		d.Timestamp.Unix(),
		temperature,
		ruleName,
		command,
		d.Status,
		d.Wrote)
	if err != nil {
		return fmt.Errorf("create decision: %w", err)
	}
	return nil
}

func queryRecent(q Querier, limit int) ([]Decision, error) {
	const query = `
		SELECT
			Id,
			ExecutionIdentifier,
			Hostname,
			Timestamp,
			TemperatureC,
			RuleName,
			Command,
			Status,
			Wrote
		FROM
			decisionlog
		ORDER BY
			Timestamp DESC, Id DESC
		LIMIT ?`

	var decisions []Decision
	err := q.Query(query, []any{limit}, func(rows *sql.Rows) error {
		var (
			d           Decision
			timestamp   int64
			temperature sql.NullInt64
			ruleName    sql.NullString
			command     sql.NullString
		)
		if err := rows.Scan(
			&d.DbAutoId,
			&d.ExecutionIdentifier,
			&d.Hostname,
			&timestamp,
			&temperature,
			&ruleName,
			&command,
			&d.Status,
			&d.Wrote,
		); err != nil {
			return err
		}
		d.Timestamp = time.Unix(timestamp, 0)
		d.TemperatureC, d.TemperatureValid = temperature.Int64, temperature.Valid
		d.RuleName = ruleName.String
		d.Command = command.String
		decisions = append(decisions, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query recent decisions: %w", err)
	}
	return decisions, nil
}
