// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import "github.com/q191201771/naza/pkg/unique"

const (
	UkPreTsParser = "TSPARSER"

	UkPreFileInput = "FILEIN"
	UkPreUdpInput  = "UDPIN"
	UkPreSrtInput  = "SRTIN"
)

func GenUkTsParser() string {
	return siUkTsParser.GenUniqueKey()
}

func GenUkFileInput() string {
	return siUkFileInput.GenUniqueKey()
}

func GenUkUdpInput() string {
	return siUkUdpInput.GenUniqueKey()
}

func GenUkSrtInput() string {
	return siUkSrtInput.GenUniqueKey()
}

var (
	siUkTsParser *unique.SingleGenerator

	siUkFileInput *unique.SingleGenerator
	siUkUdpInput  *unique.SingleGenerator
	siUkSrtInput  *unique.SingleGenerator
)

func init() {
	siUkTsParser = unique.NewSingleGenerator(UkPreTsParser)

	siUkFileInput = unique.NewSingleGenerator(UkPreFileInput)
	siUkUdpInput = unique.NewSingleGenerator(UkPreUdpInput)
	siUkSrtInput = unique.NewSingleGenerator(UkPreSrtInput)
}
