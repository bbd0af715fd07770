// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sqp

import "github.com/sirupsen/logrus"

// Logger is the structured logging sink used by the solver. Any
// *logrus.Logger or *logrus.Entry satisfies it; a caller embedding
// this module in a larger service can instead pass their own
// logrus.Entry carrying request-scoped fields.
type Logger interface {
	WithFields(fields logrus.Fields) *logrus.Entry
}

func defaultLogger() Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	return l
}

// logRow writes the per-iteration summary row documented by the
// solver's external interface: iter | objective | nls | normdx |
// normgradL | eq_viol.
func logRow(log Logger, st IterationStats) {
	log.WithFields(logrus.Fields{
		"iter":      st.Iter,
		"objective": st.Objective,
		"nls":       st.LineSearch,
		"normdx":    st.NormDX,
		"normgradL": st.NormGradL,
		"eq_viol":   st.EqViol,
	}).Debug("sqp iteration")
}

func monitorLog(log Logger, bit Monitor, name string, value any) {
	log.WithFields(logrus.Fields{name: value}).Debug("sqp monitor " + name)
}
