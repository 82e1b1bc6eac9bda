// Copyright 2020, Chef.  All rights reserved.
// https://github.com/q191201771/tunerpsi
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package base

import (
	"context"
	"os"
	"os/signal"
)

// RunSignalHandler windows下没有SIGUSR1，onUsr1不会被回调
func RunSignalHandler(ctx context.Context, onUsr1 func(), onExit func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	select {
	case <-ctx.Done():
	case s := <-c:
		Log.Infof("recv signal. s=%+v", s)
		onExit()
	}
}
