// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"errors"
	"fmt"
)

// ----- 通用的 ---------------------------------------------------------------------------------------------------------

var (
	ErrFileNotExist = errors.New("tunerpsi: file not exist")
)

// ----- pkg/mpegts ----------------------------------------------------------------------------------------------------

var (
	ErrMpegtsSectionTooLong = errors.New("tunerpsi.mpegts: section length exceeds limit")
)

// ----- pkg/psip ------------------------------------------------------------------------------------------------------

var (
	ErrPsipShortBuffer     = errors.New("tunerpsi.psip: buffer too short")
	ErrPsipSyntax          = errors.New("tunerpsi.psip: section syntax indicator not set")
	ErrPsipUnexpectedTable = errors.New("tunerpsi.psip: unexpected table id")
)

func NewErrPsipShortBuffer(need, actual int, msg string) error {
	return fmt.Errorf("%w. need=%d, actual=%d, msg=%s", ErrPsipShortBuffer, need, actual, msg)
}

func NewErrPsipUnexpectedTable(tableId uint8) error {
	return fmt.Errorf("%w. table_id=0x%02x", ErrPsipUnexpectedTable, tableId)
}

// ----- app/tspsi -----------------------------------------------------------------------------------------------------

var (
	ErrConfInputType = errors.New("tunerpsi.app: invalid input type")
	ErrConfInputAddr = errors.New("tunerpsi.app: input addr empty")

	ErrInputSrtSocket = errors.New("tunerpsi.app: create srt socket failed")
)

func NewErrConfInputType(t string) error {
	return fmt.Errorf("%w. type=%s", ErrConfInputType, t)
}

// ---------------------------------------------------------------------------------------------------------------------
