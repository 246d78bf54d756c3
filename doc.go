// Copyright (c) 2021, 2022 Mark Delany. All rights reserved. Use of this source code is
// governed by a BSD-style license that can be found in the LICENSE file.

// This file exists so that "go doc github.com/markdingo/autozone" displays something
// useful.

/*

Package autozone is an authoritative DNS server which reloads its zones without ever
interrupting service. Each reload builds a complete new generation of the zone database in
parallel, publishes it with a single pointer swap and reclaims the previous generation
once the last query reading it has finished.

Zones whose files have not changed carry their parsed contents over to the new generation
rather than being parsed again. A zone which fails to load is left out of the new
generation while every other zone continues to be served, and a zone whose file is missing
but which has transfer sources is served empty until a transfer populates it.

The daemon is in cmd/autozone. The reload engine is in the reload package and builds on
the zone, database and zoneconf packages.

Project site: https://github.com/markdingo/autozone

*/
package autozone
