// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

// 版本，该变量由外部脚本修改维护
const TunerPsiVersion = "v0.3.0"

var (
	TunerPsiLibraryName = "tunerpsi"
	TunerPsiGithubRepo  = "github.com/q191201771/tunerpsi"

	// e.g. tunerpsi v0.3.0 (github.com/q191201771/tunerpsi)
	TunerPsiFullInfo = TunerPsiLibraryName + " " + TunerPsiVersion + " (" + TunerPsiGithubRepo + ")"
)
