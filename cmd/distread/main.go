// Command distread lists and reads S3 objects through a parallel task
// fan-out.
package main

import "github.com/kaitan-stock/distributed/internal/cmd"

func main() {
	cmd.Execute()
}
