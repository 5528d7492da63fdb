// Package txn runs multi-document work inside a Mongo transaction.
//
// Transactions need a replica set or mongos. Callers that can tolerate
// weaker guarantees (dev against a standalone mongod) should test the
// returned error with IsNotSupported and decide whether to retry the
// work outside a session.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Run executes fn inside a transaction with snapshot reads and majority
// writes. fn receives a session-bound context and must use it for every
// operation that belongs to the transaction. The driver retries fn on
// transient transaction errors, so fn must be safe to re-run.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	sess, err := client.StartSession()
	if err != nil {
		return nil, err
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return fn(sc)
	}, opts)
}

// IsNotSupported reports whether err indicates the deployment cannot run
// transactions at all (standalone mongod, or a server build without
// session support), as opposed to a transaction that merely failed.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// Codes servers return when transactions/sessions are unavailable.
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "illegal operation") {
		return true
	}
	for _, pair := range [][2]string{
		{"transaction", "replica set"},
		{"session", "not supported"},
		{"transaction", "session"},
	} {
		if strings.Contains(msg, pair[0]) && strings.Contains(msg, pair[1]) {
			return true
		}
	}
	return false
}
