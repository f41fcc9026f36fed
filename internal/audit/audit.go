// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package audit logs the audit trail of queries a ConnectionPool runs:
// which SQL ran, how long it took, and whether it failed. Adapted from the
// teacher's mysql audit trail (auth.AuditLog), narrowed to the one event
// this domain has - there is no authentication/authorization surface here,
// only query execution.
package audit

import (
	"time"

	"github.com/sirupsen/logrus"
)

const logMessage = "audit trail"

// Method is called to log a query's audit trail. RunQuery calls it once
// per query after completion, including the queries Submit runs in the
// background through RunQuery.
type Method interface {
	Query(sql string, d time.Duration, err error)
}

// Log logs audit trails to a logrus.Logger, matching the structured-field
// style the teacher's AuditLog uses.
type Log struct {
	log *logrus.Entry
}

// NewLog creates a Method that logs to l under the "audit" system field.
func NewLog(l *logrus.Logger) Method {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Log{log: l.WithField("system", "audit")}
}

// Query implements Method.
func (a *Log) Query(sql string, d time.Duration, err error) {
	fields := logrus.Fields{
		"action":   "query",
		"sql":      sql,
		"duration": d,
		"success":  true,
	}
	if err != nil {
		fields["success"] = false
		fields["err"] = err
	}
	a.log.WithFields(fields).Info(logMessage)
}

// NopMethod is a Method that discards every event, used where no audit
// trail is configured (spec section 6: audit logging is opt-in).
type NopMethod struct{}

// Query implements Method.
func (NopMethod) Query(string, time.Duration, error) {}
