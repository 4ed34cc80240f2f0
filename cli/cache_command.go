package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"polydawn.net/dwight/cache"
)

func CacheCommandPattern(output io.Writer) cli.Command {
	return cli.Command{
		Name:  "cache",
		Usage: "Inspect and trim the cache",
		Subcommands: []cli.Command{
			{
				Name:  "list",
				Usage: "List cached items, oldest first",
				Action: func(ctx *cli.Context) error {
					env := loadEnvironment(ctx, false)
					err := env.WithCache(func(c *cache.Cache) error {
						for _, item := range c.Items() {
							fmt.Fprintf(output, "%d\t%s\t%s\t%s\n", item.ID, humanize.IBytes(uint64(item.Size)), item.Path, item.Key)
						}
						fmt.Fprintf(output, "total\t%s\n", humanize.IBytes(uint64(c.TotalSize())))
						return nil
					})
					if err != nil {
						panic(err)
					}
					return nil
				},
			},
			{
				Name:  "cleanup",
				Usage: "Evict the oldest items until the cache fits its size limit",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "max-size",
						Usage: "Size limit, e.g. \"500MB\" (default MAX_CACHE_SIZE from the configuration)",
					},
				},
				Action: func(ctx *cli.Context) error {
					env := loadEnvironment(ctx, false)
					maxSize := *env.Config.MaxCacheSize
					if s := ctx.String("max-size"); s != "" {
						n, err := humanize.ParseBytes(s)
						if err != nil {
							panic(usageError(ctx, "--max-size %q is not a size: %s", s, err))
						}
						maxSize = int64(n)
					}
					err := env.WithCache(func(c *cache.Cache) error {
						return c.Cleanup(maxSize, nil)
					})
					if err != nil {
						panic(err)
					}
					return nil
				},
			},
		},
	}
}
