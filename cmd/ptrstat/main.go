package main

import (
	"flag"
	"log"

	"github.com/valyala/fasthttp"

	"github.com/funny-falcon/sharedptr/alloc"
	"github.com/funny-falcon/sharedptr/stats"
)

var port = flag.String("port", "8080", "port to listen")
var nodes = flag.Int("nodes", 100000, "nodes per tree")
var rounds = flag.Int("rounds", 10, "trees to build and drop")
var onlyrun = flag.Bool("onlyrun", false, "only run the workload")

func main() {
	log.SetFlags(log.Lmicroseconds | log.Lshortfile)
	flag.Parse()

	w := &Workload{
		Blocks: &alloc.Counting{Allocator: &alloc.Pool{}},
		Slab:   &alloc.Slab{},
	}
	var reg stats.Registry
	reg.Register("blocks", w.Blocks)
	reg.Register("slab", w.Slab)

	for i := 0; i < *rounds; i++ {
		if err := w.Round(*nodes); err != nil {
			log.Fatal(err)
		}
		st := w.Blocks.Snapshot()
		log.Printf("round %d: allocs %d deallocs %d live %d", i, st.Allocs, st.Deallocs, st.LiveRecords)
	}
	if err := w.Slab.FreeFree(); err != nil {
		log.Fatal(err)
	}
	st := w.Slab.Snapshot()
	log.Printf("slab: mapped %d free %d live %d", st.MappedBytes, st.FreeBytes, st.LiveBytes)

	if *onlyrun {
		return
	}
	log.Printf("serving stats on :%s", *port)
	if err := fasthttp.ListenAndServe(":"+*port, reg.Handler); err != nil {
		log.Fatal(err)
	}
}
