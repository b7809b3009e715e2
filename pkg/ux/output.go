// Copyright (C) 2022, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"fmt"
	"io"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/fatih/color"
)

// Logger is the package-level UserLog used by demo/inspection tooling. Core
// state machine packages take their own logging.Logger at construction time
// instead of reaching for this global.
var Logger *UserLog

// UserLog mirrors every message printed to the operator into the structured
// log file, so a terminal session and its log record never diverge.
type UserLog struct {
	log    logging.Logger
	Writer io.Writer
}

func NewUserLog(log logging.Logger, userWriter io.Writer) {
	if Logger == nil {
		Logger = &UserLog{
			log:    log,
			Writer: userWriter,
		}
	}
}

// PrintToUser prints msg directly on the screen, but also to the log file.
func (ul *UserLog) PrintToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf(msg, args...)
	if ul != nil {
		fmt.Fprintln(ul.Writer, formattedMsg)
		ul.log.Info(formattedMsg)
	} else {
		fmt.Println(formattedMsg)
	}
}

// GreenCheckmarkToUser prints a green checkmark to the user before the message.
func (ul *UserLog) GreenCheckmarkToUser(msg string, args ...interface{}) {
	checkmark := "✓"
	green := color.New(color.FgHiGreen).SprintFunc()
	ul.PrintToUser(green(checkmark)+" "+msg, args...)
}

// RedXToUser prints a red X before the message, used for failed operations.
func (ul *UserLog) RedXToUser(msg string, args ...interface{}) {
	xmark := "✗"
	red := color.New(color.FgHiRed).SprintFunc()
	ul.PrintToUser(red(xmark)+" "+msg, args...)
}
