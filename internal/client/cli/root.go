package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	if a.profile == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", a.profile)
}

func (a *App) Root(ctx context.Context) {

	fmt.Println("Interval timer sync CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	runREPL(ctx, a, a.getStatus, scanner)
}
