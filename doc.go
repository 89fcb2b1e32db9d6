// Package transfer adapts the event callbacks of a network transfer to a
// small set of user handlers and lets callers cancel whole groups of
// transfers at once.
//
// A Transport (see the transport/httptransport, transport/s3transport and
// transport/miniotransport packages) reports each transfer through the
// transfertypes.Events interface. An Adapter implements that interface: it
// buffers downloaded data, records the first response, forwards progress and
// authentication challenges, and calls a single completion handler exactly
// once.
//
// Groups tie adapters together. A Registry maps each group to an action;
// setting ActionCancel makes every adapter in the group abort on its next
// event. A Coordinator counts the unfinished members of each group so
// callers can wait for a whole batch.
//
// Most callers use a Client, which owns a registry and coordinator and wires
// them into every adapter it starts:
//
//	client, err := transfer.NewClient(httptransport.New())
//	if err != nil {
//	    return err
//	}
//
//	group := transfer.NewGroupID()
//	for _, u := range urls {
//	    _, _, err := client.Start(ctx, &transfertypes.Request{Method: "GET", URL: u},
//	        func(data []byte, resp *transfertypes.Response, err error) { ... },
//	        transfer.WithGroup(group),
//	    )
//	    ...
//	}
//
//	// later
//	_ = client.Cancel(group)
//	_ = client.Wait(ctx, group)
package transfer
