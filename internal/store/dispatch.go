package store

import "database/sql"

// The single-writer dispatcher. Exactly one goroutine runs the loop below;
// it owns the connection and the open batch transaction. Operations execute
// in strict FIFO arrival order with no reordering and no priorities.

// submit enqueues an operation and blocks until the dispatcher completes it.
// The only submission failure is a closed store.
func (s *Store) submit(stmt string, params []any, read bool) (*operation, error) {
	op := &operation{
		stmt:   stmt,
		params: params,
		read:   read,
		done:   make(chan struct{}),
	}
	if !s.queue.Enqueue(op) {
		return nil, newError(KindValidation, "submit", errStoreClosed)
	}
	<-op.done
	return op, nil
}

// run drains the queue until the store is closed, then commits any open
// batch and signals stopped.
func (s *Store) run() {
	defer close(s.stopped)
	for {
		op, ok := s.queue.Dequeue()
		if !ok {
			s.commitBatch("close")
			return
		}
		s.perform(op)
	}
}

// perform executes one operation. Every path completes the operation: an
// execution failure is logged, recorded on the future, and the caller is
// released with no rows, indistinguishable from an empty result.
func (s *Store) perform(op *operation) {
	defer close(op.done)

	if op.read {
		rows, err := s.fetch(op.stmt, op.params)
		if err != nil {
			op.err = newError(KindExecution, "select", err)
			s.logger.Error("operation failed",
				"op", "select", "kind", KindExecution, "err", err)
			return
		}
		op.rows = rows
		return
	}

	if err := s.exec(op.stmt, op.params); err != nil {
		op.err = newError(KindExecution, "write", err)
		s.logger.Error("operation failed",
			"op", "write", "kind", KindExecution, "err", err)
	}

	// Commit iff the queue is observed empty right after this operation.
	// Back-to-back writes coalesce into the commit at the end of the burst;
	// earlier batched writes still drain here even when this one failed.
	if s.queue.Len() == 0 {
		s.commitBatch("drain")
	}
}

// exec runs a write inside the open batch transaction, starting one lazily.
func (s *Store) exec(stmt string, params []any) error {
	if s.tx == nil {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		s.tx = tx
	}
	_, err := s.tx.Exec(stmt, params...)
	return err
}

// fetch runs a read and materializes every row as an ordered value slice,
// since the mapping layer addresses columns positionally. Reads go through
// the open batch transaction so they observe uncommitted writes, exactly as
// every statement shares the one connection.
func (s *Store) fetch(stmt string, params []any) ([][]any, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s.tx != nil {
		rows, err = s.tx.Query(stmt, params...)
	} else {
		rows, err = s.db.Query(stmt, params...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := [][]any{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// commitBatch commits the open transaction, if any.
func (s *Store) commitBatch(reason string) {
	if s.tx == nil {
		return
	}
	if err := s.tx.Commit(); err != nil {
		s.logger.Error("commit failed", "reason", reason, "err", err)
	} else {
		s.commits++
	}
	s.tx = nil
}
