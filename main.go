package main

import cmd "github.com/rohmanhakim/sitemap-crawler/internal/cli"

func main() {
	cmd.Execute()
}
