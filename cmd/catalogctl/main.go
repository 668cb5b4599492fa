// catalogctl 馆藏目录运维命令行
//
//	catalogctl migrate
//	catalogctl grant 3 catalog.add_book catalog.change_book
//	catalogctl grant 3 --all
//	catalogctl revoke 3 catalog.add_book
//	catalogctl capabilities 3
//	catalogctl events --keys 'loan.#'
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
