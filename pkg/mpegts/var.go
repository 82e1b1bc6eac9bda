// Copyright 2023, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package mpegts

import (
	"fmt"

	"github.com/q191201771/tunerpsi/pkg/base"
)

var Log = base.Log

func newErrSectionTooLong(size, max int) error {
	return fmt.Errorf("%w. size=%d, max=%d", base.ErrMpegtsSectionTooLong, size, max)
}
